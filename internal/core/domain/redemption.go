package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus is the lifecycle state of a cash-out request.
// Only the initial lock happens in the core; review and payout are external.
type RedemptionStatus string

const (
	RedemptionStatusPending  RedemptionStatus = "PENDING"
	RedemptionStatusApproved RedemptionStatus = "APPROVED"
	RedemptionStatusRejected RedemptionStatus = "REJECTED"
	RedemptionStatusPaid     RedemptionStatus = "PAID"
)

// Redemption records Sweeps Coins locked for cash-out. AmountSC is in cents.
type Redemption struct {
	ID        uuid.UUID        `json:"id"`
	OwnerID   uuid.UUID        `json:"owner_id"`
	AmountSC  int64            `json:"amount_sc"`
	Status    RedemptionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}
