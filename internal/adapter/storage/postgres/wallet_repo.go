package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// GetOrCreate resolves the wallet for (owner, currency, subtype), inserting a
// zero-balance row on first reference. The unique key on the identity tuple
// collapses concurrent creates onto one row; the follow-up select always wins.
// The index is declared NULLS NOT DISTINCT so house wallets (owner NULL) are
// singletons too.
func (r *WalletRepo) GetOrCreate(ctx context.Context, owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) (*domain.Wallet, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO wallets (id, owner_id, currency, subtype, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $5)
		ON CONFLICT (owner_id, currency, subtype) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert, uuid.New(), owner, currency, subtype, now); err != nil {
		return nil, fmt.Errorf("insert wallet: %w", err)
	}

	query := `SELECT id, owner_id, currency, subtype, balance, created_at, updated_at
		FROM wallets WHERE owner_id IS NOT DISTINCT FROM $1 AND currency = $2 AND subtype = $3`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, owner, currency, subtype).Scan(
		&w.ID, &w.OwnerID, &w.Currency, &w.Subtype,
		&w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get wallet after upsert: %w", err)
	}
	return w, nil
}

// GetByID fetches a wallet by its UUID (without locking).
func (r *WalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, owner_id, currency, subtype, balance, created_at, updated_at
		FROM wallets WHERE id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.OwnerID, &w.Currency, &w.Subtype,
		&w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by id: %w", err)
	}
	return w, nil
}

// GetByIDForUpdate fetches a wallet by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, owner_id, currency, subtype, balance, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.OwnerID, &w.Currency, &w.Subtype,
		&w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet for update: %w", err)
	}
	return w, nil
}

// ListByOwner fetches every wallet belonging to an owner.
func (r *WalletRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	query := `SELECT id, owner_id, currency, subtype, balance, created_at, updated_at
		FROM wallets WHERE owner_id = $1 ORDER BY currency, subtype`

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w := domain.Wallet{}
		err := rows.Scan(
			&w.ID, &w.OwnerID, &w.Currency, &w.Subtype,
			&w.Balance, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// UpdateBalance sets a wallet's balance within a transaction.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", walletID)
	}
	return nil
}
