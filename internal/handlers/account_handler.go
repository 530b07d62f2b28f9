package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
)

// AccountHandler handles hotspot account lifecycle HTTP requests
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Register creates a pending hotspot account
func (h *AccountHandler) Register(c *gin.Context) {
	var req models.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Account registered", account)
}

// Activate marks an account verified and active
func (h *AccountHandler) Activate(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid account ID", err)
		return
	}

	if err := h.accountService.Activate(c.Request.Context(), accountID, nil); err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Account activated", nil)
}

// Renew extends an account's subscription
func (h *AccountHandler) Renew(c *gin.Context) {
	var req models.RenewAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.accountService.Renew(c.Request.Context(), req.AccountID, req.Days); err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Subscription renewed", nil)
}

// Suspend suspends an account and tears down its session
func (h *AccountHandler) Suspend(c *gin.Context) {
	var req models.SuspendAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.accountService.Suspend(c.Request.Context(), req.AccountID, req.Reason); err != nil {
		serviceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Account suspended", nil)
}
