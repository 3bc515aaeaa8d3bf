package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sweeps-casino/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func walletKey(owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) string {
	ownerStr := "house"
	if owner != nil {
		ownerStr = owner.String()
	}
	return fmt.Sprintf("%s|%s|%s", ownerStr, currency, subtype)
}

func (r *inMemoryWalletRepo) GetOrCreate(ctx context.Context, owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := walletKey(owner, currency, subtype)
	for _, w := range r.wallets {
		if walletKey(w.OwnerID, w.Currency, w.Subtype) == key {
			cp := *w
			return &cp, nil
		}
	}
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:        uuid.New(),
		OwnerID:   owner,
		Currency:  currency,
		Subtype:   subtype,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.wallets[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWalletRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Wallet
	for _, w := range r.wallets {
		if w.OwnerID != nil && *w.OwnerID == owner {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Currency != result[j].Currency {
			return result[i].Currency < result[j].Currency
		}
		return result[i].Subtype < result[j].Subtype
	})
	return result, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// totalBalance sums every wallet balance. Double entry keeps it at zero.
func (r *inMemoryWalletRepo) totalBalance() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, w := range r.wallets {
		total += w.Balance
	}
	return total
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	byKey        map[string]uuid.UUID
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		byKey:        make(map[string]uuid.UUID),
	}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.IdempotencyKey != nil {
		if _, exists := r.byKey[*t.IdempotencyKey]; exists {
			return fmt.Errorf("duplicate idempotency key %q", *t.IdempotencyKey)
		}
		r.byKey[*t.IdempotencyKey] = t.ID
	}
	r.transactions[t.ID] = t
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	cp := *r.transactions[id]
	return &cp, nil
}

func (r *inMemoryTransactionRepo) ListEntriesByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Entry
	for _, t := range r.transactions {
		for _, e := range t.Entries {
			if e.WalletID == walletID {
				result = append(result, e)
			}
		}
	}
	return result, nil
}

// --- In-Memory Round Repo ---

type inMemoryRoundRepo struct {
	mu     sync.RWMutex
	rounds map[uuid.UUID]*domain.GameRound
}

func newInMemoryRoundRepo() *inMemoryRoundRepo {
	return &inMemoryRoundRepo{rounds: make(map[uuid.UUID]*domain.GameRound)}
}

func (r *inMemoryRoundRepo) Create(ctx context.Context, tx pgx.Tx, round *domain.GameRound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r *inMemoryRoundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GameRound, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	round, ok := r.rounds[id]
	if !ok {
		return nil, nil
	}
	cp := *round
	return &cp, nil
}

func (r *inMemoryRoundRepo) MarkResolved(ctx context.Context, tx pgx.Tx, id uuid.UUID, revealedSeed string, outcome *domain.Outcome, payout int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	round, ok := r.rounds[id]
	if !ok || round.State != domain.RoundStateStarted {
		return false, nil
	}
	now := time.Now().UTC()
	round.State = domain.RoundStateResolved
	round.ServerSeedRevealed = &revealedSeed
	round.Outcome = outcome
	round.Payout = payout
	round.ResolvedAt = &now
	return true, nil
}

// --- In-Memory Redemption Repo ---

type inMemoryRedemptionRepo struct {
	mu          sync.RWMutex
	redemptions map[uuid.UUID]*domain.Redemption
}

func newInMemoryRedemptionRepo() *inMemoryRedemptionRepo {
	return &inMemoryRedemptionRepo{redemptions: make(map[uuid.UUID]*domain.Redemption)}
}

func (r *inMemoryRedemptionRepo) Create(ctx context.Context, tx pgx.Tx, redemption *domain.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *redemption
	r.redemptions[redemption.ID] = &cp
	return nil
}

func (r *inMemoryRedemptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Redemption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	redemption, ok := r.redemptions[id]
	if !ok {
		return nil, nil
	}
	cp := *redemption
	return &cp, nil
}

// --- In-Memory Transactor (serialized tx) ---

// inMemoryTransactor serializes transactions with one global mutex, which
// stands in for Postgres row locks: read-modify-write sequences between
// Begin and Commit are atomic with respect to each other.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: &t.mu}, nil
}

// lockedTx is a pgx.Tx that holds the transactor lock until Commit or
// Rollback. Rollback after Commit is a no-op, matching pgx semantics.
type lockedTx struct {
	release *sync.Mutex
	done    bool
	mu      sync.Mutex
}

func (t *lockedTx) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.done {
		t.done = true
		t.release.Unlock()
	}
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.finish(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.finish(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }
