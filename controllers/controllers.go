package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"paldeck_server/middleware"
	"paldeck_server/models"
	"paldeck_server/services"
	"paldeck_server/utils"
)

// RequestTimeout bounds the store work of a single request
const RequestTimeout = 10 * time.Second

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to Paldeck"})
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), RequestTimeout)
}

// decodeJSON reads the request body into v, answering 400 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return false
	}
	return true
}

// writeError maps a service error onto a status code and error body
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, code := http.StatusInternalServerError, "internal"
	message := "Something went wrong"

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteJSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation",
			Message: verr.Message,
			Field:   verr.Field,
		})
		return
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrProfileNotFound), errors.Is(err, services.ErrMatchNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrProfileExists), errors.Is(err, services.ErrAlreadySwiped):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrSwipeInFlight):
		status, code = http.StatusConflict, "in_flight"
	case errors.Is(err, services.ErrProfileIncomplete):
		status, code = http.StatusPreconditionFailed, "profile_incomplete"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
		message = "The request took too long"
	}

	if status >= http.StatusInternalServerError {
		log.Error("❌ request error",
			zap.String("requestId", middleware.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	} else {
		message = err.Error()
	}
	utils.WriteJSONResponse(w, status, models.ErrorResponse{Error: code, Message: message})
}
