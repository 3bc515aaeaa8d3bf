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

const (
	// dailyGrantSC is 1 Sweeps Coin in cents.
	dailyGrantSC int64 = 100
	// grantClaimTTL outlives the UTC day the marker covers.
	grantClaimTTL = 48 * time.Hour
)

// DailyGrantService implements ports.GrantService: one free SC grant per
// (owner, UTC day), idempotent through the ledger key `daily:<owner>:<day>`.
type DailyGrantService struct {
	wallets    ports.WalletService
	ledger     ports.LedgerService
	claimStore ports.GrantClaimStore // nil = no fast-path marker
	log        zerolog.Logger
}

// NewDailyGrantService creates a new DailyGrantService.
func NewDailyGrantService(
	wallets ports.WalletService,
	ledger ports.LedgerService,
	claimStore ports.GrantClaimStore,
	log zerolog.Logger,
) *DailyGrantService {
	return &DailyGrantService{
		wallets:    wallets,
		ledger:     ledger,
		claimStore: claimStore,
		log:        log,
	}
}

// ClaimDaily grants the daily SC amount. The Redis claim marker is a fast
// path only; the ledger idempotency key guarantees at-most-once per day even
// if the marker is lost.
func (s *DailyGrantService) ClaimDaily(ctx context.Context, owner uuid.UUID) (int64, error) {
	claimedAt := time.Now().UTC()
	day := claimedAt.Format("2006-01-02")

	if s.claimStore != nil {
		fresh, err := s.claimStore.CheckAndSet(ctx, owner.String(), day, grantClaimTTL)
		if err != nil {
			s.log.Warn().Err(err).Msg("grant claim store error, falling through to ledger")
		} else if !fresh {
			return 0, apperror.ErrGrantAlreadyClaimed()
		}
	}

	userAvail, err := s.wallets.Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable)
	if err != nil {
		return 0, err
	}
	house, err := s.wallets.Resolve(ctx, nil, domain.CurrencySC, domain.SubtypeAvailable)
	if err != nil {
		return 0, err
	}

	key := fmt.Sprintf("daily:%s:%s", owner, day)
	tx, err := s.ledger.Post(ctx, ports.PostingRequest{
		Type:           domain.TransactionTypeGrantSC,
		IdempotencyKey: &key,
		Entries: []ports.EntryInput{
			{WalletID: house.ID, Direction: domain.DirectionDebit, Amount: dailyGrantSC},
			{WalletID: userAvail.ID, Direction: domain.DirectionCredit, Amount: dailyGrantSC},
		},
		Metadata: map[string]any{"source": "DAILY"},
	})
	if err != nil {
		return 0, err
	}

	// An idempotent replay hands back the original day's transaction. That
	// means the grant was already claimed, e.g. after the marker lapsed.
	if tx.CreatedAt.Before(claimedAt) {
		return 0, apperror.ErrGrantAlreadyClaimed()
	}

	return dailyGrantSC, nil
}
