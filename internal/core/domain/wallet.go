package domain

import (
	"time"

	"github.com/google/uuid"
)

// Currency is a closed set of coin types handled by the ledger.
type Currency string

const (
	CurrencyGC Currency = "GC" // Gold Coins (play currency)
	CurrencySC Currency = "SC" // Sweeps Coins (redeemable)
)

// IsValid reports whether c is a known currency.
func (c Currency) IsValid() bool {
	return c == CurrencyGC || c == CurrencySC
}

// WalletSubtype distinguishes spendable funds from funds at risk or bonuses.
type WalletSubtype string

const (
	SubtypeAvailable WalletSubtype = "AVAILABLE"
	SubtypeEscrow    WalletSubtype = "ESCROW"
	SubtypeBonus     WalletSubtype = "BONUS"
)

// IsValid reports whether s is a known wallet subtype.
func (s WalletSubtype) IsValid() bool {
	return s == SubtypeAvailable || s == SubtypeEscrow || s == SubtypeBonus
}

// Wallet is a balance account identified by (owner, currency, subtype).
// OwnerID nil marks a house wallet. Balance is in coin cents and is only
// ever mutated through ledger postings.
type Wallet struct {
	ID        uuid.UUID     `json:"id"`
	OwnerID   *uuid.UUID    `json:"owner_id,omitempty"`
	Currency  Currency      `json:"currency"`
	Subtype   WalletSubtype `json:"subtype"`
	Balance   int64         `json:"balance"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsHouse reports whether the wallet belongs to the house rather than a user.
func (w *Wallet) IsHouse() bool {
	return w.OwnerID == nil
}
