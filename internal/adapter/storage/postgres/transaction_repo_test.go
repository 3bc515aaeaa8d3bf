package postgres

import (
	"context"
	"testing"
	"time"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction() *domain.Transaction {
	key := "wager:" + uuid.New().String()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		Type:           domain.TransactionTypeWager,
		IdempotencyKey: &key,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	txn.Entries = []domain.Entry{
		{ID: uuid.New(), TransactionID: txn.ID, WalletID: uuid.New(), Direction: domain.DirectionDebit, Amount: 100},
		{ID: uuid.New(), TransactionID: txn.ID, WalletID: uuid.New(), Direction: domain.DirectionCredit, Amount: 100},
	}
	return txn
}

func transactionColumns() []string {
	return []string{"id", "tx_type", "idempotency_key", "metadata", "created_at"}
}

func entryColumns() []string {
	return []string{"id", "transaction_id", "wallet_id", "direction", "amount"}
}

func entryRows(entries []domain.Entry) *pgxmock.Rows {
	rows := pgxmock.NewRows(entryColumns())
	for _, e := range entries {
		rows.AddRow(e.ID, e.TransactionID, e.WalletID, e.Direction, e.Amount)
	}
	return rows
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.Type, txn.IdempotencyKey, txn.Metadata, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, e := range txn.Entries {
		mock.ExpectExec("INSERT INTO entries").
			WithArgs(e.ID, e.TransactionID, e.WalletID, e.Direction, e.Amount).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_Create_DuplicateKeyFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.Type, txn.IdempotencyKey, txn.Metadata, txn.CreatedAt).
		WillReturnError(assert.AnError)

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE id").
		WithArgs(txn.ID).
		WillReturnRows(pgxmock.NewRows(transactionColumns()).
			AddRow(txn.ID, txn.Type, txn.IdempotencyKey, txn.Metadata, txn.CreatedAt))
	mock.ExpectQuery("SELECT .+ FROM entries WHERE transaction_id").
		WithArgs(txn.ID).
		WillReturnRows(entryRows(txn.Entries))

	result, err := repo.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, domain.DirectionDebit, result.Entries[0].Direction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIdempotencyKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction()

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE idempotency_key").
		WithArgs(*txn.IdempotencyKey).
		WillReturnRows(pgxmock.NewRows(transactionColumns()).
			AddRow(txn.ID, txn.Type, txn.IdempotencyKey, txn.Metadata, txn.CreatedAt))
	mock.ExpectQuery("SELECT .+ FROM entries WHERE transaction_id").
		WithArgs(txn.ID).
		WillReturnRows(entryRows(txn.Entries))

	result, err := repo.GetByIdempotencyKey(context.Background(), *txn.IdempotencyKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByIdempotencyKey_Miss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE idempotency_key").
		WithArgs("no-such-key").
		WillReturnRows(pgxmock.NewRows(transactionColumns()))

	result, err := repo.GetByIdempotencyKey(context.Background(), "no-such-key")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListEntriesByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	walletID := uuid.New()
	entries := []domain.Entry{
		{ID: uuid.New(), TransactionID: uuid.New(), WalletID: walletID, Direction: domain.DirectionCredit, Amount: 100},
		{ID: uuid.New(), TransactionID: uuid.New(), WalletID: walletID, Direction: domain.DirectionDebit, Amount: 20},
	}

	mock.ExpectQuery("SELECT .+ FROM entries e").
		WithArgs(walletID).
		WillReturnRows(entryRows(entries))

	result, err := repo.ListEntriesByWallet(context.Background(), walletID)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(100), result[0].SignedAmount())
	assert.Equal(t, int64(-20), result[1].SignedAmount())
	assert.NoError(t, mock.ExpectationsWereMet())
}
