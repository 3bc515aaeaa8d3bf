package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType tags the business meaning of a posting.
type TransactionType string

const (
	TransactionTypeGrantSC        TransactionType = "GRANT_SC"
	TransactionTypeGCPurchase     TransactionType = "GC_PURCHASE"
	TransactionTypeWager          TransactionType = "WAGER"
	TransactionTypeSettle         TransactionType = "START_SETTLE"
	TransactionTypeRedemptionLock TransactionType = "REDEMPTION_LOCK"
)

// EntryDirection is the side of a double-entry leg.
type EntryDirection string

const (
	DirectionDebit  EntryDirection = "DEBIT"
	DirectionCredit EntryDirection = "CREDIT"
)

// Entry is one leg of a transaction against a single wallet.
// Amount is strictly positive; the direction carries the sign.
type Entry struct {
	ID            uuid.UUID      `json:"id"`
	TransactionID uuid.UUID      `json:"transaction_id"`
	WalletID      uuid.UUID      `json:"wallet_id"`
	Direction     EntryDirection `json:"direction"`
	Amount        int64          `json:"amount"`
}

// Transaction is an immutable, balanced group of entries applied atomically.
// For every transaction the credit total equals the debit total, so postings
// move value between wallets without creating or destroying it.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	Type           TransactionType `json:"type"`
	IdempotencyKey *string         `json:"idempotency_key,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Entries        []Entry         `json:"entries"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SignedAmount returns the balance delta this entry applies to its wallet.
func (e *Entry) SignedAmount() int64 {
	if e.Direction == DirectionDebit {
		return -e.Amount
	}
	return e.Amount
}
