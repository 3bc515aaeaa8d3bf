package service

import (
	"context"
	"fmt"
	"time"

	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RedemptionLockService implements ports.RedemptionService: the initial
// AVAILABLE -> ESCROW lock for a Sweeps Coin cash-out. Review and payout of
// the locked funds happen outside the core.
type RedemptionLockService struct {
	wallets        ports.WalletService
	ledger         ports.LedgerService
	redemptionRepo ports.RedemptionRepository
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewRedemptionLockService creates a new RedemptionLockService.
func NewRedemptionLockService(
	wallets ports.WalletService,
	ledger ports.LedgerService,
	redemptionRepo ports.RedemptionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *RedemptionLockService {
	return &RedemptionLockService{
		wallets:        wallets,
		ledger:         ledger,
		redemptionRepo: redemptionRepo,
		transactor:     transactor,
		log:            log,
	}
}

// Lock moves amountSC from the owner's SC AVAILABLE wallet into escrow and
// records a PENDING redemption, atomically.
func (s *RedemptionLockService) Lock(ctx context.Context, owner uuid.UUID, amountSC int64) (*domain.Redemption, error) {
	if amountSC <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	avail, err := s.wallets.Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}
	escrow, err := s.wallets.Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeEscrow)
	if err != nil {
		return nil, err
	}
	if avail.Balance < amountSC {
		return nil, apperror.ErrInsufficientFunds()
	}

	redemption := &domain.Redemption{
		ID:        uuid.New(),
		OwnerID:   owner,
		AmountSC:  amountSC,
		Status:    domain.RedemptionStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	key := "redeem:" + redemption.ID.String()
	if _, err := s.ledger.PostInTx(ctx, dbTx, ports.PostingRequest{
		Type:           domain.TransactionTypeRedemptionLock,
		IdempotencyKey: &key,
		Entries: []ports.EntryInput{
			{WalletID: avail.ID, Direction: domain.DirectionDebit, Amount: amountSC},
			{WalletID: escrow.ID, Direction: domain.DirectionCredit, Amount: amountSC},
		},
		Metadata: map[string]any{"stage": "LOCK", "redemption_id": redemption.ID.String()},
	}); err != nil {
		return nil, err
	}

	if err := s.redemptionRepo.Create(ctx, dbTx, redemption); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create redemption: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("redemption_id", redemption.ID.String()).
		Str("owner_id", owner.String()).
		Int64("amount_sc", amountSC).
		Msg("redemption locked")

	return redemption, nil
}
