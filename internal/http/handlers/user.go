package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/http/response"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/services"
)

type UserHandler struct {
	log           *logger.Logger
	registrations services.RegistrationService
}

func NewUserHandler(log *logger.Logger, registrations services.RegistrationService) *UserHandler {
	return &UserHandler{
		log:           log.With("handler", "UserHandler"),
		registrations: registrations,
	}
}

// registrationView never carries the device fingerprint.
type registrationView struct {
	WalletAddress  string     `json:"walletAddress"`
	RegistrationID string     `json:"registrationId"`
	RegisteredAt   time.Time  `json:"registeredAt"`
	Verified       bool       `json:"verified"`
	LastActivity   *time.Time `json:"lastActivity,omitempty"`
}

func viewOf(reg domain.UserRegistration, withActivity bool) registrationView {
	v := registrationView{
		WalletAddress:  reg.WalletAddress,
		RegistrationID: reg.RegistrationID,
		RegisteredAt:   reg.RegisteredAt,
		Verified:       reg.Verified,
	}
	if withActivity {
		at := reg.LastActivity
		v.LastActivity = &at
	}
	return v
}

type registerRequest struct {
	WalletAddress     string   `json:"walletAddress"`
	DeviceFingerprint string   `json:"deviceFingerprint"`
	Timestamp         *float64 `json:"timestamp"`
}

// POST /api/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, created, err := h.registrations.Register(c.Request.Context(), req.WalletAddress, req.DeviceFingerprint, req.Timestamp)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	msg := "User already registered"
	if created {
		msg = "User registered successfully"
	}
	response.RespondOK(c, msg, viewOf(reg, false))
}

type verifyUserRequest struct {
	WalletAddress     string `json:"walletAddress"`
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// POST /api/user/verify
func (h *UserHandler) Verify(c *gin.Context) {
	var req verifyUserRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, err := h.registrations.Verify(c.Request.Context(), req.WalletAddress, req.DeviceFingerprint)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "User verified successfully", viewOf(reg, true))
}

// GET /api/user/:address
func (h *UserHandler) Get(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "User found", viewOf(reg, true))
}

// GET /api/user/stats/summary
func (h *UserHandler) Summary(c *gin.Context) {
	response.RespondOK(c, "", h.registrations.Summary(c.Request.Context()))
}
