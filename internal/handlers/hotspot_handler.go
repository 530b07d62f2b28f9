package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
	"hotspot-service/pkg/fingerprint"
)

// HotspotHandler handles the captive-portal login HTTP surface
type HotspotHandler struct {
	loginService      *services.LoginService
	sessionService    *services.SessionService
	federationService *services.FederationService
}

// NewHotspotHandler creates a new hotspot handler
func NewHotspotHandler(
	loginService *services.LoginService,
	sessionService *services.SessionService,
	federationService *services.FederationService,
) *HotspotHandler {
	return &HotspotHandler{
		loginService:      loginService,
		sessionService:    sessionService,
		federationService: federationService,
	}
}

// RequestOtp starts a login flow and sends the one-time code
func (h *HotspotHandler) RequestOtp(c *gin.Context) {
	var req models.RequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	token, challenge, err := h.loginService.StartLogin(c.Request.Context(), req.TenantID, req.Phone, c.ClientIP())
	if err != nil && !errors.Is(err, services.ErrSmsDelivery) {
		serviceError(c, err)
		return
	}

	response := &models.OtpChallengeResponse{
		FlowToken:  token,
		CodeMasked: challenge.CodeMasked,
		ExpiresAt:  challenge.ExpiresAt,
		ExpiresIn:  int(time.Until(challenge.ExpiresAt).Seconds()),
	}

	if err != nil {
		// Flow is open but the code never left; the portal should offer resend.
		c.JSON(http.StatusAccepted, models.APIResponse{
			Success: false,
			Message: "Code could not be delivered, please resend",
			Data:    response,
		})
		return
	}

	SuccessResponse(c, http.StatusOK, "Verification code sent", response)
}

// VerifyOtp verifies the code and either establishes the session or reports
// a device conflict the portal must resolve.
func (h *HotspotHandler) VerifyOtp(c *gin.Context) {
	var req models.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.loginService.VerifyOtp(c.Request.Context(), req.FlowToken, req.Code, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrDeviceConflictPending) {
			c.JSON(http.StatusConflict, models.APIResponse{
				Success: false,
				Message: "Account is active on another device",
				Data:    loginResultResponse(result),
			})
			return
		}
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", loginResultResponse(result))
}

// ResendOtp re-issues the code for a pending flow
func (h *HotspotHandler) ResendOtp(c *gin.Context) {
	var req models.ResendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	challenge, err := h.loginService.ResendOtp(c.Request.Context(), req.FlowToken, c.ClientIP())
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Verification code resent", &models.OtpChallengeResponse{
		FlowToken:  req.FlowToken,
		CodeMasked: challenge.CodeMasked,
		ExpiresAt:  challenge.ExpiresAt,
		ExpiresIn:  int(time.Until(challenge.ExpiresAt).Seconds()),
	})
}

// ForceLogin takes over the session from the currently bound device
func (h *HotspotHandler) ForceLogin(c *gin.Context) {
	var req models.ForceLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	result, err := h.loginService.ForceLogin(c.Request.Context(), req.FlowToken)
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Session moved to this device", loginResultResponse(result))
}

// ValidateSession checks a presented session token + device pair
func (h *HotspotHandler) ValidateSession(c *gin.Context) {
	var req models.ValidateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.sessionService.Validate(c.Request.Context(), req.AccountID, req.Token, req.DeviceID); err != nil {
		if errors.Is(err, services.ErrSessionStale) {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "Session is no longer valid",
				Data:    &models.SessionStatusResponse{Valid: false},
			})
			return
		}
		serviceError(c, err)
		return
	}

	binding, err := h.sessionService.Current(c.Request.Context(), req.AccountID)
	if err != nil || binding == nil {
		SuccessResponse(c, http.StatusOK, "Session is valid", &models.SessionStatusResponse{Valid: true})
		return
	}

	SuccessResponse(c, http.StatusOK, "Session is valid", &models.SessionStatusResponse{
		Valid:    true,
		DeviceID: binding.DeviceID,
		Kind:     binding.Kind,
	})
}

// Logout clears the session binding
func (h *HotspotHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.loginService.Logout(c.Request.Context(), req.AccountID); err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

// CrossRadiusLookup resolves a username against federated operator realms
func (h *HotspotHandler) CrossRadiusLookup(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		ErrorResponse(c, http.StatusBadRequest, "username query parameter is required", nil)
		return
	}

	tenantID, err := uuid.Parse(c.GetString("tenant_id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "A valid tenant ID is required", err)
		return
	}

	response, err := h.federationService.CrossRadiusLookup(c.Request.Context(), tenantID, username)
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Lookup complete", response)
}

// DeviceFingerprint reports the pseudo-MAC the service derives for the
// calling client. Used by portals on gateways that do not forward MACs.
func (h *HotspotHandler) DeviceFingerprint(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Device resolved", gin.H{
		"device_id": fingerprint.Resolve(c.ClientIP(), c.Request.UserAgent()),
	})
}

func loginResultResponse(result *services.LoginResult) *models.LoginResultResponse {
	if result == nil {
		return nil
	}
	return &models.LoginResultResponse{
		State:        result.State,
		AccountID:    result.AccountID,
		DeviceID:     result.DeviceID,
		SessionToken: result.SessionToken,
		FlowToken:    result.FlowToken,
		Message:      result.Message,
	}
}
