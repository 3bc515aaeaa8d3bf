package postgres

import (
	"context"
	"errors"
	"fmt"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RedemptionRepo implements ports.RedemptionRepository.
type RedemptionRepo struct {
	pool Pool
}

// NewRedemptionRepo creates a new RedemptionRepo.
func NewRedemptionRepo(pool Pool) *RedemptionRepo {
	return &RedemptionRepo{pool: pool}
}

// Create inserts a PENDING redemption within a database transaction, so the
// row commits together with its escrow lock posting.
func (r *RedemptionRepo) Create(ctx context.Context, tx pgx.Tx, redemption *domain.Redemption) error {
	query := `INSERT INTO redemptions (id, owner_id, amount_sc, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		redemption.ID, redemption.OwnerID, redemption.AmountSC,
		redemption.Status, redemption.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// GetByID fetches a redemption by UUID.
func (r *RedemptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Redemption, error) {
	query := `SELECT id, owner_id, amount_sc, status, created_at
		FROM redemptions WHERE id = $1`

	redemption := &domain.Redemption{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&redemption.ID, &redemption.OwnerID, &redemption.AmountSC,
		&redemption.Status, &redemption.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get redemption by id: %w", err)
	}
	return redemption, nil
}
