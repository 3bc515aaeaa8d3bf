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

func TestRedemptionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRedemptionRepo(mock)
	redemption := &domain.Redemption{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		AmountSC:  2000,
		Status:    domain.RedemptionStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO redemptions").
		WithArgs(redemption.ID, redemption.OwnerID, redemption.AmountSC,
			redemption.Status, redemption.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, redemption)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedemptionRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRedemptionRepo(mock)
	id := uuid.New()
	owner := uuid.New()
	created := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM redemptions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "amount_sc", "status", "created_at"}).
			AddRow(id, owner, int64(2000), domain.RedemptionStatusPending, created))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, owner, result.OwnerID)
	assert.Equal(t, domain.RedemptionStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedemptionRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRedemptionRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM redemptions WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "amount_sc", "status", "created_at"}))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
