package service

import (
	"context"
	"fmt"

	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// coinPackages is the fixed Gold Coin catalog. Prices are USD cents,
// amounts are coin cents.
var coinPackages = map[string]ports.CoinPackage{
	"gc_999":  {ID: "gc_999", PriceUSD: 999, GC: 100_000 * 100},
	"gc_1999": {ID: "gc_1999", PriceUSD: 1999, GC: 220_000 * 100},
}

// MockPurchaseService implements ports.PurchaseService without calling a
// payment provider: the checkout is simulated and only the GC_PURCHASE
// posting is real. Provider integration sits outside the core.
type MockPurchaseService struct {
	wallets ports.WalletService
	ledger  ports.LedgerService
	log     zerolog.Logger
}

// NewMockPurchaseService creates a new MockPurchaseService.
func NewMockPurchaseService(wallets ports.WalletService, ledger ports.LedgerService, log zerolog.Logger) *MockPurchaseService {
	return &MockPurchaseService{wallets: wallets, ledger: ledger, log: log}
}

// Checkout credits the owner with the package's Gold Coins from the house.
func (s *MockPurchaseService) Checkout(ctx context.Context, owner uuid.UUID, packageID string) (*domain.Transaction, error) {
	pkg, ok := coinPackages[packageID]
	if !ok {
		return nil, apperror.ErrUnknownPackage()
	}

	userGC, err := s.wallets.Resolve(ctx, &owner, domain.CurrencyGC, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}
	houseGC, err := s.wallets.Resolve(ctx, nil, domain.CurrencyGC, domain.SubtypeAvailable)
	if err != nil {
		return nil, err
	}

	// Each checkout is its own purchase; retry idempotency belongs to the
	// (mocked) provider boundary, so the key is unique per call.
	key := fmt.Sprintf("pkg:%s:%s:%s", owner, pkg.ID, uuid.New())
	txn, err := s.ledger.Post(ctx, ports.PostingRequest{
		Type:           domain.TransactionTypeGCPurchase,
		IdempotencyKey: &key,
		Entries: []ports.EntryInput{
			{WalletID: houseGC.ID, Direction: domain.DirectionDebit, Amount: pkg.GC},
			{WalletID: userGC.ID, Direction: domain.DirectionCredit, Amount: pkg.GC},
		},
		Metadata: map[string]any{"package_id": pkg.ID, "amount_usd": pkg.PriceUSD},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", owner.String()).
		Str("package_id", pkg.ID).
		Int64("gc", pkg.GC).
		Msg("mock purchase fulfilled")

	return txn, nil
}
