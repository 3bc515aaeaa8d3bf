package handler

import (
	"time"

	"sweeps-casino/internal/adapter/http/dto"
	"sweeps-casino/internal/adapter/http/middleware"
	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"
	"sweeps-casino/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles balance, grant, purchase, and redemption endpoints.
type WalletHandler struct {
	walletSvc     ports.WalletService
	grantSvc      ports.GrantService
	purchaseSvc   ports.PurchaseService
	redemptionSvc ports.RedemptionService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	walletSvc ports.WalletService,
	grantSvc ports.GrantService,
	purchaseSvc ports.PurchaseService,
	redemptionSvc ports.RedemptionService,
) *WalletHandler {
	return &WalletHandler{
		walletSvc:     walletSvc,
		grantSvc:      grantSvc,
		purchaseSvc:   purchaseSvc,
		redemptionSvc: redemptionSvc,
	}
}

// Balances handles GET /api/v1/wallets/balances.
func (h *WalletHandler) Balances(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallets, err := h.walletSvc.Balances(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWallets(wallets))
}

// ClaimDailyGrant handles POST /api/v1/grants/daily.
func (h *WalletHandler) ClaimDailyGrant(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	amount, err := h.grantSvc.ClaimDaily(c.Request.Context(), ownerID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.GrantResponse{
		Amount:   amount,
		Currency: string(domain.CurrencySC),
	})
}

// Purchase handles POST /api/v1/store/purchase.
func (h *WalletHandler) Purchase(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.purchaseSvc.Checkout(c.Request.Context(), ownerID.(uuid.UUID), req.PackageID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(tx))
}

// LockRedemption handles POST /api/v1/redemptions.
func (h *WalletHandler) LockRedemption(c *gin.Context) {
	ownerID, ok := c.Get(middleware.CtxOwnerID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RedemptionLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	redemption, err := h.redemptionSvc.Lock(c.Request.Context(), ownerID.(uuid.UUID), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RedemptionResponse{
		ID:        redemption.ID.String(),
		AmountSC:  redemption.AmountSC,
		Status:    string(redemption.Status),
		CreatedAt: redemption.CreatedAt.Format(time.RFC3339),
	})
}

func toTransactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	entries := make([]dto.EntryResponse, 0, len(tx.Entries))
	for _, e := range tx.Entries {
		entries = append(entries, dto.EntryResponse{
			WalletID:  e.WalletID.String(),
			Direction: string(e.Direction),
			Amount:    e.Amount,
		})
	}
	return dto.TransactionResponse{
		ID:        tx.ID.String(),
		Type:      string(tx.Type),
		Entries:   entries,
		CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}
