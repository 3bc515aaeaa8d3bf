package ports

import (
	"context"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	// GetOrCreate resolves the wallet for an identity tuple, creating it
	// with zero balance on first reference. A concurrent duplicate create
	// resolves to the single existing row, never an error.
	GetOrCreate(ctx context.Context, owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) (*domain.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// TransactionRepository defines persistence for ledger transactions and
// their entries. A transaction and its entries are written together.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// GetByIdempotencyKey returns the prior transaction for a key, or nil.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	ListEntriesByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Entry, error)
}

// RoundRepository defines persistence for game rounds.
type RoundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, round *domain.GameRound) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GameRound, error)
	// MarkResolved performs the guarded STARTED -> RESOLVED transition in a
	// single conditional update. It returns false when the round was not in
	// STARTED, so at most one concurrent resolve can succeed.
	MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID, revealedSeed string, outcome *domain.Outcome, payout int64) (bool, error)
}

// RedemptionRepository defines persistence for cash-out locks.
type RedemptionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, redemption *domain.Redemption) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Redemption, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
