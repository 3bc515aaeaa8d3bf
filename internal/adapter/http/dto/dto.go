package dto

import "sweeps-casino/internal/core/domain"

// StartRoundRequest is the request body for starting a slot round.
type StartRoundRequest struct {
	GameCode   string `json:"game_code" binding:"required,safe_id,max=64"`
	Currency   string `json:"currency" binding:"required,oneof=GC SC"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	ClientSeed string `json:"client_seed" binding:"required,safe_id,max=128"`
}

// StartRoundResponse is the commitment returned before the outcome is known.
type StartRoundResponse struct {
	RoundID        string `json:"round_id"`
	ServerSeedHash string `json:"server_seed_hash"`
	Nonce          int    `json:"nonce"`
}

// ResolveRoundResponse reveals the outcome and the committed server seed.
type ResolveRoundResponse struct {
	RoundID    string     `json:"round_id"`
	Stops      []int      `json:"stops"`
	Grid       [][]string `json:"grid"`
	Lines      []int64    `json:"lines"`
	Payout     int64      `json:"payout"`
	ServerSeed string     `json:"server_seed"`
}

// PurchaseRequest is the request body for a Gold Coin package checkout.
type PurchaseRequest struct {
	PackageID string `json:"package_id" binding:"required,safe_id,max=64"`
}

// RedemptionLockRequest is the request body for locking Sweeps Coins.
type RedemptionLockRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// RedemptionResponse is the response body for a created redemption lock.
type RedemptionResponse struct {
	ID        string `json:"id"`
	AmountSC  int64  `json:"amount_sc"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GrantResponse is the response body for a claimed daily grant.
type GrantResponse struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// WalletResponse is one balance account in a balances listing.
type WalletResponse struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Subtype  string `json:"subtype"`
	Balance  int64  `json:"balance"`
}

// EntryResponse is one leg of a posted transaction.
type EntryResponse struct {
	WalletID  string `json:"wallet_id"`
	Direction string `json:"direction"`
	Amount    int64  `json:"amount"`
}

// TransactionResponse is the response body for a posted transaction.
type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Entries   []EntryResponse `json:"entries"`
	CreatedAt string          `json:"created_at"`
}

// FromWallets converts domain wallets to the API shape.
func FromWallets(wallets []domain.Wallet) []WalletResponse {
	out := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, WalletResponse{
			ID:       w.ID.String(),
			Currency: string(w.Currency),
			Subtype:  string(w.Subtype),
			Balance:  w.Balance,
		})
	}
	return out
}
