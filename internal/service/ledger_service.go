package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// LedgerEngine implements ports.LedgerService: atomic, idempotent
// double-entry postings. Wallet balances are mutated here and nowhere else.
type LedgerEngine struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerEngine creates a new LedgerEngine.
func NewLedgerEngine(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerEngine {
	return &LedgerEngine{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// Post applies a posting in its own database transaction.
func (s *LedgerEngine) Post(ctx context.Context, req ports.PostingRequest) (*domain.Transaction, error) {
	if err := validatePosting(req); err != nil {
		return nil, err
	}

	// Layer 1: Redis idempotency check
	if req.IdempotencyKey != nil && s.idempCache != nil {
		cached, err := s.idempCache.Get(ctx, *req.IdempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", *req.IdempotencyKey).Msg("redis idempotency check failed, falling through to DB")
		}
		if cached != nil {
			return unmarshalCachedTransaction(cached)
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.apply(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheResult(ctx, req.IdempotencyKey, txn)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("type", string(txn.Type)).
		Int("entries", len(txn.Entries)).
		Msg("posting applied")

	return txn, nil
}

// PostInTx applies a posting inside a caller-owned database transaction.
// The caller commits; the idempotency cache is skipped because the outcome
// is not durable until then (the unique key on transactions remains the
// authoritative guard).
func (s *LedgerEngine) PostInTx(ctx context.Context, dbTx pgx.Tx, req ports.PostingRequest) (*domain.Transaction, error) {
	if err := validatePosting(req); err != nil {
		return nil, err
	}
	return s.apply(ctx, dbTx, req)
}

// apply runs the idempotency short-circuit, locks every referenced wallet,
// rejects postings that would drive a user wallet negative, and writes the
// transaction, entries and balance updates. All inside dbTx: either every
// effect commits or none do.
func (s *LedgerEngine) apply(ctx context.Context, dbTx pgx.Tx, req ports.PostingRequest) (*domain.Transaction, error) {
	if req.IdempotencyKey != nil {
		existing, err := s.txRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
		}
		if existing != nil {
			return existing, nil
		}
	}

	// Net effect per wallet; locking in sorted id order keeps concurrent
	// postings on overlapping wallet sets deadlock-free.
	deltas := make(map[uuid.UUID]int64, len(req.Entries))
	for _, e := range req.Entries {
		if e.Direction == domain.DirectionDebit {
			deltas[e.WalletID] -= e.Amount
		} else {
			deltas[e.WalletID] += e.Amount
		}
	}
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if wallet == nil {
			return nil, apperror.ErrInvalidPosting(fmt.Sprintf("unknown wallet %s", id))
		}
		newBalance := wallet.Balance + deltas[id]
		if newBalance < 0 && !wallet.IsHouse() {
			return nil, apperror.ErrInsufficientFunds()
		}
		if err := s.walletRepo.UpdateBalance(ctx, dbTx, id, newBalance); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
		}
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		Type:           req.Type,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
		CreatedAt:      now,
	}
	for _, e := range req.Entries {
		txn.Entries = append(txn.Entries, domain.Entry{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			WalletID:      e.WalletID,
			Direction:     e.Direction,
			Amount:        e.Amount,
		})
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	return txn, nil
}

// cacheResult stores the posting result for the idempotency fast path
// (best-effort).
func (s *LedgerEngine) cacheResult(ctx context.Context, key *string, txn *domain.Transaction) {
	if key == nil || s.idempCache == nil {
		return
	}
	respJSON, err := json.Marshal(txn)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal posting for cache")
		return
	}
	if err := s.idempCache.Set(ctx, *key, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", *key).Msg("failed to cache posting in redis")
	}
}

// validatePosting rejects malformed postings before any mutation: empty
// entry sets, non-positive amounts, and debit/credit totals that do not
// balance. Value is conserved by construction.
func validatePosting(req ports.PostingRequest) error {
	if len(req.Entries) == 0 {
		return apperror.ErrInvalidPosting("no entries")
	}
	var debits, credits int64
	for _, e := range req.Entries {
		if e.Amount <= 0 {
			return apperror.ErrInvalidPosting("non-positive amount")
		}
		switch e.Direction {
		case domain.DirectionDebit:
			debits += e.Amount
		case domain.DirectionCredit:
			credits += e.Amount
		default:
			return apperror.ErrInvalidPosting(fmt.Sprintf("unknown direction %q", e.Direction))
		}
	}
	if debits != credits {
		return apperror.ErrInvalidPosting(fmt.Sprintf("unbalanced entries: debits %d, credits %d", debits, credits))
	}
	return nil
}

// unmarshalCachedTransaction deserializes a cached posting result.
func unmarshalCachedTransaction(data []byte) (*domain.Transaction, error) {
	txn := &domain.Transaction{}
	if err := json.Unmarshal(data, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached tx: %w", err))
	}
	return txn, nil
}
