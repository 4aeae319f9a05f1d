package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// UserProfileController handles profile and deck requests
type UserProfileController struct {
	ProfileService *services.ProfileService
	Log            *zap.Logger
}

// NewUserProfileController initializes the profile controller
func NewUserProfileController(service *services.ProfileService, log *zap.Logger) *UserProfileController {
	return &UserProfileController{ProfileService: service, Log: log}
}

// HandleCreateProfile stores the caller's first profile
func (c *UserProfileController) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if !decodeJSON(w, r, &profile) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	created, err := c.ProfileService.CreateProfile(ctx, middleware.UserID(r.Context()), profile)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, created)
}

// HandleUpdateProfile replaces the caller's profile
func (c *UserProfileController) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if !decodeJSON(w, r, &profile) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	updated, err := c.ProfileService.UpdateProfile(ctx, middleware.UserID(r.Context()), profile)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, updated)
}

// HandleGetMyProfile returns the caller's profile
func (c *UserProfileController) HandleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	c.writeProfile(w, r, middleware.UserID(r.Context()))
}

// HandleGetProfile returns any profile by id
func (c *UserProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	c.writeProfile(w, r, mux.Vars(r)["id"])
}

func (c *UserProfileController) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := requestContext(r)
	defer cancel()

	profile, err := c.ProfileService.GetProfile(ctx, id)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, profile)
}

// HandleGetDeck returns the next page of candidate cards
func (c *UserProfileController) HandleGetDeck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := parseFilters(q.Get)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	ctx, cancel := requestContext(r)
	defer cancel()

	page, err := c.ProfileService.GetCandidates(ctx, middleware.UserID(r.Context()), filters, q.Get("cursor"), limit)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, page)
}

func parseFilters(get func(string) string) (models.DiscoveryFilters, error) {
	var f models.DiscoveryFilters
	var err error

	if v := get("minAge"); v != "" {
		if f.MinAge, err = strconv.Atoi(v); err != nil {
			return f, &services.ValidationError{Field: "minAge", Message: "must be a number"}
		}
	}
	if v := get("maxAge"); v != "" {
		if f.MaxAge, err = strconv.Atoi(v); err != nil {
			return f, &services.ValidationError{Field: "maxAge", Message: "must be a number"}
		}
	}
	if v := get("maxDistance"); v != "" {
		if f.MaxDistance, err = strconv.ParseFloat(v, 64); err != nil || f.MaxDistance < 0 ||
			math.IsNaN(f.MaxDistance) || math.IsInf(f.MaxDistance, 0) {
			return f, &services.ValidationError{Field: "maxDistance", Message: "must be a positive number of kilometers"}
		}
	}
	if v := get("interests"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Interests = append(f.Interests, tag)
			}
		}
	}
	f.Location = strings.TrimSpace(get("location"))
	return f, nil
}
