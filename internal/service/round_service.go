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

// drawsPerSpin is one draw per reel.
const drawsPerSpin = 5

// RoundEngine implements ports.RoundService: the wager escrow -> resolve ->
// settlement lifecycle, composing the ledger, the commit-reveal RNG and the
// slot evaluator.
type RoundEngine struct {
	roundRepo  ports.RoundRepository
	wallets    ports.WalletService
	ledger     ports.LedgerService
	fairness   ports.FairnessService
	slot       ports.SlotMachine
	encSvc     ports.EncryptionService
	transactor ports.DBTransactor
	events     ports.EventPublisher // nil = publishing disabled
	log        zerolog.Logger
}

// NewRoundEngine creates a new RoundEngine.
func NewRoundEngine(
	roundRepo ports.RoundRepository,
	wallets ports.WalletService,
	ledger ports.LedgerService,
	fairness ports.FairnessService,
	slot ports.SlotMachine,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	events ports.EventPublisher,
	log zerolog.Logger,
) *RoundEngine {
	return &RoundEngine{
		roundRepo:  roundRepo,
		wallets:    wallets,
		ledger:     ledger,
		fairness:   fairness,
		slot:       slot,
		encSvc:     encSvc,
		transactor: transactor,
		events:     events,
		log:        log,
	}
}

// Start escrows the wager, commits a seed pair and persists a STARTED round.
// The wager posting and the round row commit in one database transaction,
// keyed by the round id so a retried start cannot double-escrow.
func (s *RoundEngine) Start(ctx context.Context, req ports.StartRoundRequest) (*ports.StartRoundResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Currency.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown currency %q", req.Currency))
	}
	if req.ClientSeed == "" {
		return nil, apperror.Validation("client seed is required")
	}

	avail, err := s.wallets.Resolve(ctx, &req.OwnerID, req.Currency, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}
	escrow, err := s.wallets.Resolve(ctx, &req.OwnerID, req.Currency, domain.SubtypeEscrow)
	if err != nil {
		return nil, err
	}

	// Fast funds check; the authoritative guard runs again under the wallet
	// row lock inside the posting.
	if avail.Balance < req.Amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	serverSeed, serverSeedHash, err := s.fairness.Commit()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit seed: %w", err))
	}
	seedEnc, err := s.encSvc.Encrypt(serverSeed)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt server seed: %w", err))
	}

	roundID := uuid.New()
	round := &domain.GameRound{
		ID:             roundID,
		OwnerID:        req.OwnerID,
		GameCode:       req.GameCode,
		Currency:       req.Currency,
		Wager:          req.Amount,
		State:          domain.RoundStateStarted,
		ClientSeed:     req.ClientSeed,
		ServerSeedHash: serverSeedHash,
		ServerSeedEnc:  seedEnc,
		Nonce:          1,
		CreatedAt:      time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wagerKey := "wager:" + roundID.String()
	if _, err := s.ledger.PostInTx(ctx, dbTx, ports.PostingRequest{
		Type:           domain.TransactionTypeWager,
		IdempotencyKey: &wagerKey,
		Entries: []ports.EntryInput{
			{WalletID: avail.ID, Direction: domain.DirectionDebit, Amount: req.Amount},
			{WalletID: escrow.ID, Direction: domain.DirectionCredit, Amount: req.Amount},
		},
		Metadata: map[string]any{"game_code": req.GameCode, "round_id": roundID.String()},
	}); err != nil {
		return nil, err
	}

	if err := s.roundRepo.Create(ctx, dbTx, round); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create round: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("round_id", roundID.String()).
		Str("owner_id", req.OwnerID.String()).
		Str("currency", string(req.Currency)).
		Int64("wager", req.Amount).
		Msg("round started")

	return &ports.StartRoundResult{
		RoundID:        roundID,
		ServerSeedHash: serverSeedHash,
		Nonce:          round.Nonce,
	}, nil
}

// Resolve reveals the committed seed, evaluates the spin and settles the
// round. The guarded state transition and the settlement posting commit in
// the same database transaction, so at most one concurrent resolve succeeds
// and a half-settled round can never be observed.
func (s *RoundEngine) Resolve(ctx context.Context, owner uuid.UUID, roundID uuid.UUID) (*ports.ResolveRoundResult, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get round: %w", err))
	}
	if round == nil || round.OwnerID != owner {
		return nil, apperror.ErrNotFound("round")
	}
	if !round.IsResolvable() {
		return nil, apperror.ErrInvalidState("round")
	}

	// Reveal the exact seed whose hash was committed at start. Sampling a
	// fresh seed here would break the provable-fairness guarantee.
	serverSeed, err := s.encSvc.Decrypt(round.ServerSeedEnc)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt server seed: %w", err))
	}

	draws := s.fairness.Draw(serverSeed, round.ClientSeed, round.Nonce, drawsPerSpin)
	spin, err := s.slot.Spin(draws)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("evaluate spin: %w", err))
	}
	payout := spin.Multiplier * round.Wager / s.slot.Config().BetUnit

	outcome := &domain.Outcome{
		Stops:  spin.Stops,
		Grid:   spin.Grid,
		Lines:  spin.Lines,
		Payout: payout,
	}

	escrow, err := s.wallets.Resolve(ctx, &owner, round.Currency, domain.SubtypeEscrow)
	if err != nil {
		return nil, err
	}
	house, err := s.wallets.Resolve(ctx, nil, round.Currency, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}
	avail, err := s.wallets.Resolve(ctx, &owner, round.Currency, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Guarded transition: only succeeds while the round is still STARTED.
	transitioned, err := s.roundRepo.MarkResolved(ctx, dbTx, round.ID, serverSeed, outcome, payout)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark resolved: %w", err))
	}
	if !transitioned {
		return nil, apperror.ErrInvalidState("round")
	}

	entries := []ports.EntryInput{
		{WalletID: escrow.ID, Direction: domain.DirectionDebit, Amount: round.Wager},
		{WalletID: house.ID, Direction: domain.DirectionCredit, Amount: round.Wager},
	}
	if payout > 0 {
		entries = append(entries,
			ports.EntryInput{WalletID: house.ID, Direction: domain.DirectionDebit, Amount: payout},
			ports.EntryInput{WalletID: avail.ID, Direction: domain.DirectionCredit, Amount: payout},
		)
	}

	settleKey := "settle:" + round.ID.String()
	if _, err := s.ledger.PostInTx(ctx, dbTx, ports.PostingRequest{
		Type:           domain.TransactionTypeSettle,
		IdempotencyKey: &settleKey,
		Entries:        entries,
		Metadata:       map[string]any{"round_id": round.ID.String(), "payout": payout},
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.publishSettled(ctx, round, payout)

	s.log.Info().
		Str("round_id", round.ID.String()).
		Int64("wager", round.Wager).
		Int64("payout", payout).
		Msg("round resolved")

	return &ports.ResolveRoundResult{
		Outcome:    outcome,
		Payout:     payout,
		ServerSeed: serverSeed,
	}, nil
}

// publishSettled emits the settlement event (best-effort).
func (s *RoundEngine) publishSettled(ctx context.Context, round *domain.GameRound, payout int64) {
	if s.events == nil {
		return
	}
	err := s.events.PublishRoundSettled(ctx, ports.RoundSettledEvent{
		RoundID:  round.ID,
		OwnerID:  round.OwnerID,
		GameCode: round.GameCode,
		Currency: round.Currency,
		Wager:    round.Wager,
		Payout:   payout,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("round_id", round.ID.String()).Msg("failed to publish settlement event")
	}
}
