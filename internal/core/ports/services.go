package ports

import (
	"context"
	"time"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EntryInput is one requested leg of a posting.
type EntryInput struct {
	WalletID  uuid.UUID
	Direction domain.EntryDirection
	Amount    int64
}

// PostingRequest is a complete atomic posting: balanced entries plus an
// optional idempotency key that makes the call safe to retry.
type PostingRequest struct {
	Type           domain.TransactionType
	IdempotencyKey *string
	Entries        []EntryInput
	Metadata       map[string]any
}

// LedgerService applies atomic, idempotent double-entry postings.
type LedgerService interface {
	// Post runs the posting in its own database transaction.
	Post(ctx context.Context, req PostingRequest) (*domain.Transaction, error)
	// PostInTx runs the posting inside a caller-owned database transaction,
	// so a round state transition and its settlement commit together.
	PostInTx(ctx context.Context, tx pgx.Tx, req PostingRequest) (*domain.Transaction, error)
}

// WalletService resolves balance accounts and reads balances.
type WalletService interface {
	Resolve(ctx context.Context, owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) (*domain.Wallet, error)
	Balances(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error)
}

// FairnessService is the commit-reveal RNG.
type FairnessService interface {
	// Commit generates a secret server seed and its SHA-256 commitment.
	Commit() (serverSeed string, serverSeedHash string, err error)
	// Draw derives count floats in [0,1) from (serverSeed, clientSeed, nonce).
	Draw(serverSeed, clientSeed string, nonce, count int) []float64
	// Verify checks a revealed seed against its published commitment.
	Verify(serverSeed, serverSeedHash string) bool
}

// SlotMachine maps a draw sequence to a reel outcome. Pure, no I/O.
type SlotMachine interface {
	Spin(draws []float64) (*domain.SpinResult, error)
	Config() *domain.SlotConfig
}

// StartRoundRequest holds validated input for starting a round.
type StartRoundRequest struct {
	OwnerID    uuid.UUID
	GameCode   string
	Currency   domain.Currency
	Amount     int64
	ClientSeed string
}

// StartRoundResult is what the caller needs before the outcome is known.
type StartRoundResult struct {
	RoundID        uuid.UUID
	ServerSeedHash string
	Nonce          int
}

// ResolveRoundResult reveals the outcome and the committed seed.
type ResolveRoundResult struct {
	Outcome    *domain.Outcome
	Payout     int64
	ServerSeed string
}

// RoundService orchestrates the wager escrow -> resolve -> settlement lifecycle.
type RoundService interface {
	Start(ctx context.Context, req StartRoundRequest) (*StartRoundResult, error)
	Resolve(ctx context.Context, owner uuid.UUID, roundID uuid.UUID) (*ResolveRoundResult, error)
}

// GrantService hands out the daily Sweeps Coin grant.
type GrantService interface {
	// ClaimDaily grants the daily SC amount once per (owner, UTC day).
	// Repeat claims on the same day return ErrGrantAlreadyClaimed.
	ClaimDaily(ctx context.Context, owner uuid.UUID) (int64, error)
}

// CoinPackage is a purchasable Gold Coin bundle (provider call is mocked).
type CoinPackage struct {
	ID       string
	PriceUSD int64 // cents
	GC       int64 // coin cents granted
}

// PurchaseService fulfils mock Gold Coin purchases.
type PurchaseService interface {
	Checkout(ctx context.Context, owner uuid.UUID, packageID string) (*domain.Transaction, error)
}

// RedemptionService locks Sweeps Coins for cash-out.
type RedemptionService interface {
	Lock(ctx context.Context, owner uuid.UUID, amountSC int64) (*domain.Redemption, error)
}

// EncryptionService protects committed server seeds at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenService validates externally-issued bearer tokens.
type TokenService interface {
	Validate(tokenString string) (uuid.UUID, error)
}

// IdempotencyCache is the fast-path idempotency check in front of the DB.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// GrantClaimStore marks daily grant claims so repeat requests short-circuit
// before touching the ledger. The ledger idempotency key remains the
// authoritative guard.
type GrantClaimStore interface {
	// CheckAndSet atomically records the claim marker. Returns true if the
	// claim is new for that day.
	CheckAndSet(ctx context.Context, owner string, day string, ttl time.Duration) (bool, error)
}

// RoundSettledEvent is published after a round settles.
type RoundSettledEvent struct {
	RoundID  uuid.UUID       `json:"round_id"`
	OwnerID  uuid.UUID       `json:"owner_id"`
	GameCode string          `json:"game_code"`
	Currency domain.Currency `json:"currency"`
	Wager    int64           `json:"wager"`
	Payout   int64           `json:"payout"`
}

// EventPublisher emits settlement events for downstream consumers.
// Best-effort: failures are logged, never fail the settlement.
type EventPublisher interface {
	PublishRoundSettled(ctx context.Context, event RoundSettledEvent) error
}
