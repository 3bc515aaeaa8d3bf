package domain

// Payline is the row offset to read on each reel, left to right.
type Payline [5]int

// SlotConfig is a fixed 5x3 slot machine definition: one symbol strip per
// reel, a paytable of [5-kind, 4-kind, 3-kind] multipliers per symbol, and
// the set of paylines. The paytable is denominated against BetUnit, a full
// lines x unit-per-line bet.
type SlotConfig struct {
	Code     string
	Reels    [5][]string
	Paytable map[string][3]int64
	Paylines []Payline
	Wild     string
	Scatter  string
	BetUnit  int64
}

// StripLength returns the symbol count of reel i.
func (c *SlotConfig) StripLength(i int) int {
	return len(c.Reels[i])
}

// NeonHeist is the reference slot configuration.
var NeonHeist = SlotConfig{
	Code: "slot-neon-heist",
	Reels: [5][]string{
		{"W", "S", "M", "D", "C", "A", "K", "Q", "J", "10", "M", "D", "A", "K", "Q", "J", "10", "C", "A", "K"},
		{"W", "S", "M", "D", "C", "A", "K", "Q", "J", "10", "M", "A", "K", "Q", "J", "10", "C", "A", "K", "Q"},
		{"W", "S", "M", "D", "C", "A", "K", "Q", "J", "10", "M", "D", "A", "K", "Q", "J", "10", "C", "A", "K"},
		{"W", "S", "M", "D", "C", "A", "K", "Q", "J", "10", "M", "A", "K", "Q", "J", "10", "C", "A", "K", "Q"},
		{"W", "S", "M", "D", "C", "A", "K", "Q", "J", "10", "M", "D", "A", "K", "Q", "J", "10", "C", "A", "K"},
	},
	Paytable: map[string][3]int64{
		"W":  {500, 100, 20},
		"M":  {200, 60, 10},
		"D":  {100, 40, 8},
		"C":  {60, 30, 6},
		"A":  {40, 20, 4},
		"K":  {30, 15, 3},
		"Q":  {20, 10, 2},
		"J":  {15, 8, 2},
		"10": {10, 6, 2},
	},
	Paylines: []Payline{
		{0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{2, 2, 2, 2, 2},
		{0, 1, 2, 1, 0},
		{2, 1, 0, 1, 2},
	},
	Wild:    "W",
	Scatter: "S",
	BetUnit: 20,
}
