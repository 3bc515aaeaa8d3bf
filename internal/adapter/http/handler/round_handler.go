package handler

import (
	"sweeps-casino/internal/adapter/http/dto"
	"sweeps-casino/internal/adapter/http/middleware"
	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"
	"sweeps-casino/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoundHandler handles game round endpoints.
type RoundHandler struct {
	roundSvc ports.RoundService
}

// NewRoundHandler creates a new RoundHandler.
func NewRoundHandler(roundSvc ports.RoundService) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

// Start handles POST /api/v1/rounds — escrows the wager and returns the
// server seed commitment.
func (h *RoundHandler) Start(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.StartRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.roundSvc.Start(c.Request.Context(), ports.StartRoundRequest{
		OwnerID:    ownerID.(uuid.UUID),
		GameCode:   req.GameCode,
		Currency:   domain.Currency(req.Currency),
		Amount:     req.Amount,
		ClientSeed: req.ClientSeed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.StartRoundResponse{
		RoundID:        result.RoundID.String(),
		ServerSeedHash: result.ServerSeedHash,
		Nonce:          result.Nonce,
	})
}

// Resolve handles POST /api/v1/rounds/:id/resolve — settles the round and
// reveals the committed server seed.
func (h *RoundHandler) Resolve(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	roundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid round id"))
		return
	}

	result, err := h.roundSvc.Resolve(c.Request.Context(), ownerID.(uuid.UUID), roundID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ResolveRoundResponse{
		RoundID:    roundID.String(),
		Stops:      result.Outcome.Stops,
		Grid:       result.Outcome.Grid,
		Lines:      result.Outcome.Lines,
		Payout:     result.Payout,
		ServerSeed: result.ServerSeed,
	})
}
