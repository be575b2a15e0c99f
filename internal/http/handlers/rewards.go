package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/http/response"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/services"
)

const maxLeaderboardSize = 100

type RewardsHandler struct {
	log     *logger.Logger
	rewards services.RewardsService
}

func NewRewardsHandler(log *logger.Logger, rewards services.RewardsService) *RewardsHandler {
	return &RewardsHandler{log: log.With("handler", "RewardsHandler"), rewards: rewards}
}

// GET /api/rewards/balance/:address
func (h *RewardsHandler) Balance(c *gin.Context) {
	res, err := h.rewards.Balance(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "", res)
}

type manualRewardRequest struct {
	UserAddress string `json:"userAddress"`
	Amount      string `json:"amount"`
}

// POST /api/rewards/manual (admin)
func (h *RewardsHandler) Manual(c *gin.Context) {
	var req manualRewardRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserAddress == "" || req.Amount == "" {
		response.RespondDomainError(c, domain.NewValidationError("", "Missing userAddress or amount"))
		return
	}
	res, err := h.rewards.ManualReward(c.Request.Context(), req.UserAddress, req.Amount)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "Manual reward processed successfully", res)
}

// GET /api/rewards/leaderboard?limit=N
func (h *RewardsHandler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardSize {
			response.RespondDomainError(c, domain.NewValidationError("limit", "limit must be between 1 and %d", maxLeaderboardSize))
			return
		}
		limit = n
	}
	res, err := h.rewards.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "", res)
}
