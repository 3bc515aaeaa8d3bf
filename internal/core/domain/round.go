package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoundState is the lifecycle state of a game round. RESOLVED is terminal.
type RoundState string

const (
	RoundStateStarted  RoundState = "STARTED"
	RoundStateResolved RoundState = "RESOLVED"
)

// Outcome is the persisted result of a resolved slot round.
type Outcome struct {
	Stops  []int      `json:"stops"`
	Grid   [][]string `json:"grid"` // [reel][row]
	Lines  []int64    `json:"lines"`
	Payout int64      `json:"payout"`
}

// SpinResult is the pure slot evaluation before it is priced against a wager.
type SpinResult struct {
	Stops      []int
	Grid       [][]string
	Lines      []int64
	Multiplier int64
}

// GameRound is one commit-reveal wager round. The server seed is held
// encrypted from the moment its hash is committed, and the exact committed
// seed is what gets revealed at resolve time.
type GameRound struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	GameCode           string     `json:"game_code"`
	Currency           Currency   `json:"currency"`
	Wager              int64      `json:"wager"`
	State              RoundState `json:"state"`
	ClientSeed         string     `json:"client_seed"`
	ServerSeedHash     string     `json:"server_seed_hash"`
	ServerSeedEnc      string     `json:"-"` // AES-GCM at rest, never serialized
	ServerSeedRevealed *string    `json:"server_seed_revealed,omitempty"`
	Nonce              int        `json:"nonce"`
	Payout             int64      `json:"payout"`
	Outcome            *Outcome   `json:"outcome,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// IsResolvable reports whether the round can still transition to RESOLVED.
func (r *GameRound) IsResolvable() bool {
	return r.State == RoundStateStarted
}
