package service

import (
	"context"
	"fmt"

	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/pkg/apperror"

	"github.com/google/uuid"
)

// WalletStore implements ports.WalletService on top of the wallet
// repository: lazy account resolution and balance reads.
type WalletStore struct {
	walletRepo ports.WalletRepository
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(walletRepo ports.WalletRepository) *WalletStore {
	return &WalletStore{walletRepo: walletRepo}
}

// Resolve returns the wallet for (owner, currency, subtype), creating it
// with zero balance on first reference. owner nil resolves a house wallet.
func (s *WalletStore) Resolve(ctx context.Context, owner *uuid.UUID, currency domain.Currency, subtype domain.WalletSubtype) (*domain.Wallet, error) {
	if !currency.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown currency %q", currency))
	}
	if !subtype.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown wallet subtype %q", subtype))
	}
	wallet, err := s.walletRepo.GetOrCreate(ctx, owner, currency, subtype)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve wallet: %w", err))
	}
	return wallet, nil
}

// Balances lists every wallet belonging to an owner.
func (s *WalletStore) Balances(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}
