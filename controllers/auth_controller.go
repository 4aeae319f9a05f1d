package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// AuthController handles sign-up, sign-in and sign-out
type AuthController struct {
	AuthService *services.AuthService
	Log         *zap.Logger
}

// NewAuthController initializes the auth controller
func NewAuthController(service *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{AuthService: service, Log: log}
}

// HandleSignUp creates an account and returns a session
func (c *AuthController) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	session, err := c.AuthService.SignUp(ctx, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, session)
}

// HandleSignIn checks credentials and returns a session
func (c *AuthController) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	session, err := c.AuthService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, session)
}

// HandleSignOut revokes the caller's token
func (c *AuthController) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	c.AuthService.SignOut(middleware.ClaimsFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated identity
func (c *AuthController) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, r, c.Log, services.ErrUnauthorized)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, models.User{ID: claims.Subject, Email: claims.Email})
}
