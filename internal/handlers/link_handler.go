package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
	"hotspot-service/pkg/fingerprint"
)

// LinkHandler handles link login grant HTTP requests
type LinkHandler struct {
	linkService *services.LinkService
}

// NewLinkHandler creates a new link login handler
func NewLinkHandler(linkService *services.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// Generate creates a time-boxed guest access grant
func (h *LinkHandler) Generate(c *gin.Context) {
	var req models.GenerateLinkLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	grant, err := h.linkService.Generate(c.Request.Context(), req.TenantID, req.DurationMinutes, req.Metadata)
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Link login grant created", &models.LinkLoginGrantResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
	})
}

// Verify redeems a grant for the connecting device
func (h *LinkHandler) Verify(c *gin.Context) {
	var req models.VerifyLinkLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	deviceID := fingerprint.Resolve(c.ClientIP(), c.Request.UserAgent())
	result, err := h.linkService.Verify(c.Request.Context(), req.Token, deviceID, c.ClientIP())
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Link login accepted", result)
}
