package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
)

// SuccessResponse sends a success response
func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	apiError := &models.APIError{
		Code:    codeForStatus(status),
		Message: message,
	}
	if err != nil {
		apiError.Details = err.Error()
	}

	c.JSON(status, models.APIResponse{
		Success: false,
		Message: message,
		Error:   apiError,
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusGone:
		return "GONE"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusBadGateway:
		return "UPSTREAM_ERROR"
	default:
		return "ERROR"
	}
}

// serviceError maps a service-layer error to an HTTP status and message.
// Unrecognized errors come back as 500s.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotRegistered):
		ErrorResponse(c, http.StatusNotFound, "Account not found", err)
	case errors.Is(err, services.ErrAccountInactive):
		ErrorResponse(c, http.StatusForbidden, "Account cannot log in", err)
	case errors.Is(err, services.ErrAlreadyRegistered):
		ErrorResponse(c, http.StatusConflict, "Account already exists", err)
	case errors.Is(err, services.ErrOtpNotFound):
		ErrorResponse(c, http.StatusNotFound, "No active code for this number", err)
	case errors.Is(err, services.ErrOtpExpired):
		ErrorResponse(c, http.StatusGone, "Code has expired, request a new one", err)
	case errors.Is(err, services.ErrOtpMismatch):
		ErrorResponse(c, http.StatusUnauthorized, "Incorrect code", err)
	case errors.Is(err, services.ErrOtpAttemptsExhausted):
		ErrorResponse(c, http.StatusTooManyRequests, "Too many incorrect attempts, request a new code", err)
	case errors.Is(err, services.ErrOtpRateLimited):
		ErrorResponse(c, http.StatusTooManyRequests, "Too many code requests, try again later", err)
	case errors.Is(err, services.ErrSessionStale):
		ErrorResponse(c, http.StatusUnauthorized, "Session is no longer valid", err)
	case errors.Is(err, services.ErrFlowInvalid):
		ErrorResponse(c, http.StatusUnauthorized, "Login flow is invalid or has expired", err)
	case errors.Is(err, services.ErrLinkTokenInvalid):
		ErrorResponse(c, http.StatusUnauthorized, "Link token is invalid", err)
	case errors.Is(err, services.ErrLinkTokenExpired):
		ErrorResponse(c, http.StatusGone, "Link token has expired", err)
	case errors.Is(err, services.ErrSmsDelivery):
		ErrorResponse(c, http.StatusBadGateway, "Failed to deliver SMS", err)
	case errors.Is(err, services.ErrRadiusSync):
		ErrorResponse(c, http.StatusBadGateway, "RADIUS backend unavailable", err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "Internal error", err)
	}
}
