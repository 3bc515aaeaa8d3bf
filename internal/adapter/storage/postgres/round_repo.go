package postgres

import (
	"context"
	"errors"
	"fmt"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RoundRepo implements ports.RoundRepository.
type RoundRepo struct {
	pool Pool
}

// NewRoundRepo creates a new RoundRepo.
func NewRoundRepo(pool Pool) *RoundRepo {
	return &RoundRepo{pool: pool}
}

// Create inserts a STARTED round within a database transaction, so the row
// commits together with its wager posting.
func (r *RoundRepo) Create(ctx context.Context, tx pgx.Tx, round *domain.GameRound) error {
	query := `INSERT INTO game_rounds (id, owner_id, game_code, currency, wager, state,
		client_seed, server_seed_hash, server_seed_enc, nonce, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		round.ID, round.OwnerID, round.GameCode, round.Currency, round.Wager,
		round.State, round.ClientSeed, round.ServerSeedHash, round.ServerSeedEnc,
		round.Nonce, round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// GetByID fetches a round by UUID.
func (r *RoundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GameRound, error) {
	query := `SELECT id, owner_id, game_code, currency, wager, state, client_seed,
		server_seed_hash, server_seed_enc, server_seed_revealed, nonce, payout,
		outcome, created_at, resolved_at
		FROM game_rounds WHERE id = $1`

	round := &domain.GameRound{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&round.ID, &round.OwnerID, &round.GameCode, &round.Currency, &round.Wager,
		&round.State, &round.ClientSeed, &round.ServerSeedHash, &round.ServerSeedEnc,
		&round.ServerSeedRevealed, &round.Nonce, &round.Payout,
		&round.Outcome, &round.CreatedAt, &round.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get round by id: %w", err)
	}
	return round, nil
}

// MarkResolved performs the guarded STARTED -> RESOLVED transition. The state
// predicate makes the update conditional: under concurrent resolves exactly
// one update reports an affected row, and only that caller may settle.
func (r *RoundRepo) MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID, revealedSeed string, outcome *domain.Outcome, payout int64) (bool, error) {
	query := `UPDATE game_rounds
		SET state = 'RESOLVED', server_seed_revealed = $2, outcome = $3, payout = $4, resolved_at = NOW()
		WHERE id = $1 AND state = 'STARTED'`

	tag, err := tx.Exec(ctx, query, id, revealedSeed, outcome, payout)
	if err != nil {
		return false, fmt.Errorf("mark round resolved: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
