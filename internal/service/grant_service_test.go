package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type grantTestDeps struct {
	svc        *DailyGrantService
	wallets    *mocks.MockWalletService
	ledger     *mocks.MockLedgerService
	claimStore *mocks.MockGrantClaimStore
	ctrl       *gomock.Controller
}

func setupGrantService(t *testing.T) *grantTestDeps {
	ctrl := gomock.NewController(t)
	d := &grantTestDeps{
		wallets:    mocks.NewMockWalletService(ctrl),
		ledger:     mocks.NewMockLedgerService(ctrl),
		claimStore: mocks.NewMockGrantClaimStore(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewDailyGrantService(d.wallets, d.ledger, d.claimStore, zerolog.Nop())
	return d
}

func todayUTC() string {
	return time.Now().UTC().Format("2006-01-02")
}

func TestGrant_ClaimDaily_Success(t *testing.T) {
	d := setupGrantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()
	day := todayUTC()

	userAvail := walletFor(&owner, domain.CurrencySC, domain.SubtypeAvailable, 0)
	house := walletFor(nil, domain.CurrencySC, domain.SubtypeAvailable, 0)

	d.claimStore.EXPECT().CheckAndSet(ctx, owner.String(), day, grantClaimTTL).Return(true, nil)
	d.wallets.EXPECT().Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable).Return(userAvail, nil)
	d.wallets.EXPECT().Resolve(ctx, gomock.Nil(), domain.CurrencySC, domain.SubtypeAvailable).Return(house, nil)

	var postedReq ports.PostingRequest
	d.ledger.EXPECT().Post(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.PostingRequest) (*domain.Transaction, error) {
			postedReq = req
			return &domain.Transaction{ID: uuid.New(), CreatedAt: time.Now().UTC()}, nil
		})

	amount, err := d.svc.ClaimDaily(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, dailyGrantSC, amount)

	assert.Equal(t, domain.TransactionTypeGrantSC, postedReq.Type)
	require.NotNil(t, postedReq.IdempotencyKey)
	assert.Equal(t, fmt.Sprintf("daily:%s:%s", owner, day), *postedReq.IdempotencyKey)
	require.Len(t, postedReq.Entries, 2)
	assert.Equal(t, house.ID, postedReq.Entries[0].WalletID)
	assert.Equal(t, domain.DirectionDebit, postedReq.Entries[0].Direction)
	assert.Equal(t, userAvail.ID, postedReq.Entries[1].WalletID)
	assert.Equal(t, domain.DirectionCredit, postedReq.Entries[1].Direction)
}

func TestGrant_ClaimDaily_AlreadyClaimed(t *testing.T) {
	d := setupGrantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()

	d.claimStore.EXPECT().CheckAndSet(ctx, owner.String(), todayUTC(), grantClaimTTL).Return(false, nil)

	amount, err := d.svc.ClaimDaily(ctx, owner)
	assert.Zero(t, amount)
	assertAppError(t, err, "LED_005")
}

func TestGrant_ClaimDaily_ClaimStoreDownFallsThroughToLedger(t *testing.T) {
	d := setupGrantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()

	userAvail := walletFor(&owner, domain.CurrencySC, domain.SubtypeAvailable, 0)
	house := walletFor(nil, domain.CurrencySC, domain.SubtypeAvailable, 0)

	// A Redis outage must not block the grant; the ledger key still guards it.
	d.claimStore.EXPECT().CheckAndSet(ctx, owner.String(), todayUTC(), grantClaimTTL).Return(false, errors.New("redis down"))
	d.wallets.EXPECT().Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable).Return(userAvail, nil)
	d.wallets.EXPECT().Resolve(ctx, gomock.Nil(), domain.CurrencySC, domain.SubtypeAvailable).Return(house, nil)
	d.ledger.EXPECT().Post(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ ports.PostingRequest) (*domain.Transaction, error) {
			return &domain.Transaction{ID: uuid.New(), CreatedAt: time.Now().UTC()}, nil
		})

	amount, err := d.svc.ClaimDaily(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, dailyGrantSC, amount)
}

func TestGrant_ClaimDaily_ReplayAfterMarkerLoss(t *testing.T) {
	d := setupGrantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()

	userAvail := walletFor(&owner, domain.CurrencySC, domain.SubtypeAvailable, 100)
	house := walletFor(nil, domain.CurrencySC, domain.SubtypeAvailable, -100)

	// Marker lapsed, so the fast path reports a fresh claim. The ledger
	// replays the day's posting, which must surface as already-claimed.
	d.claimStore.EXPECT().CheckAndSet(ctx, owner.String(), todayUTC(), grantClaimTTL).Return(true, nil)
	d.wallets.EXPECT().Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable).Return(userAvail, nil)
	d.wallets.EXPECT().Resolve(ctx, gomock.Nil(), domain.CurrencySC, domain.SubtypeAvailable).Return(house, nil)
	d.ledger.EXPECT().Post(ctx, gomock.Any()).Return(&domain.Transaction{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC().Add(-6 * time.Hour),
	}, nil)

	amount, err := d.svc.ClaimDaily(ctx, owner)
	assert.Zero(t, amount)
	assertAppError(t, err, "LED_005")
}

func TestGrant_ClaimDaily_LedgerError(t *testing.T) {
	d := setupGrantService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	owner := uuid.New()

	userAvail := walletFor(&owner, domain.CurrencySC, domain.SubtypeAvailable, 0)
	house := walletFor(nil, domain.CurrencySC, domain.SubtypeAvailable, 0)

	d.claimStore.EXPECT().CheckAndSet(ctx, owner.String(), todayUTC(), grantClaimTTL).Return(true, nil)
	d.wallets.EXPECT().Resolve(ctx, &owner, domain.CurrencySC, domain.SubtypeAvailable).Return(userAvail, nil)
	d.wallets.EXPECT().Resolve(ctx, gomock.Nil(), domain.CurrencySC, domain.SubtypeAvailable).Return(house, nil)
	d.ledger.EXPECT().Post(ctx, gomock.Any()).Return(nil, errors.New("db down"))

	amount, err := d.svc.ClaimDaily(ctx, owner)
	assert.Zero(t, amount)
	assert.Error(t, err)
}
