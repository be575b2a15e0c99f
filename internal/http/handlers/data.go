package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/http/response"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/services"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

type DataHandler struct {
	log         *logger.Logger
	submissions services.SubmissionService
	stats       services.StatsService
}

func NewDataHandler(log *logger.Logger, submissions services.SubmissionService, stats services.StatsService) *DataHandler {
	return &DataHandler{
		log:         log.With("handler", "DataHandler"),
		submissions: submissions,
		stats:       stats,
	}
}

// POST /api/data/submit
func (h *DataHandler) Submit(c *gin.Context) {
	var in validation.SubmissionInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.submissions.Submit(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "Health data submitted successfully", res)
}

// GET /api/data/stats
func (h *DataHandler) Stats(c *gin.Context) {
	res, err := h.stats.PlatformStats(c.Request.Context())
	if err != nil {
		h.log.Error("platform stats failed", "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "", res)
}

// GET /api/data/user/:address
func (h *DataHandler) UserStats(c *gin.Context) {
	res, err := h.stats.UserStats(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "", res)
}

type verifyProofRequest struct {
	Proof    string `json:"proof"`
	DataHash string `json:"dataHash"`
}

// POST /api/data/verify
func (h *DataHandler) VerifyProof(c *gin.Context) {
	var req verifyProofRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.submissions.VerifyProof(c.Request.Context(), req.Proof, req.DataHash)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, "", res)
}
