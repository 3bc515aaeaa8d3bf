package postgres

import (
	"context"
	"errors"
	"fmt"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. A transaction row
// and its entry rows are always written in the same database transaction.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction and its entries within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	txQuery := `INSERT INTO transactions (id, tx_type, idempotency_key, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, txQuery, t.ID, t.Type, t.IdempotencyKey, t.Metadata, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	entryQuery := `INSERT INTO entries (id, transaction_id, wallet_id, direction, amount)
		VALUES ($1, $2, $3, $4, $5)`
	for _, e := range t.Entries {
		_, err := tx.Exec(ctx, entryQuery, e.ID, e.TransactionID, e.WalletID, e.Direction, e.Amount)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}
	return nil
}

// GetByID fetches a transaction with its entries.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, tx_type, idempotency_key, metadata, created_at
		FROM transactions WHERE id = $1`

	return r.loadTransaction(ctx, r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey returns the prior transaction for a key, or nil.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT id, tx_type, idempotency_key, metadata, created_at
		FROM transactions WHERE idempotency_key = $1`

	return r.loadTransaction(ctx, r.pool.QueryRow(ctx, query, key))
}

// ListEntriesByWallet fetches every entry touching a wallet, oldest first.
func (r *TransactionRepo) ListEntriesByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Entry, error) {
	query := `SELECT e.id, e.transaction_id, e.wallet_id, e.direction, e.amount
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.wallet_id = $1 ORDER BY t.created_at`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// loadTransaction scans a transaction row and attaches its entries.
func (r *TransactionRepo) loadTransaction(ctx context.Context, row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.Type, &t.IdempotencyKey, &t.Metadata, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	query := `SELECT id, transaction_id, wallet_id, direction, amount
		FROM entries WHERE transaction_id = $1`
	rows, err := r.pool.Query(ctx, query, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	t.Entries, err = scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanEntries(rows pgx.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e := domain.Entry{}
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.WalletID, &e.Direction, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry rows: %w", err)
	}
	return entries, nil
}
