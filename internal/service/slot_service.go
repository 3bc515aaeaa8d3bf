package service

import (
	"fmt"
	"math"

	"sweeps-casino/internal/core/domain"
)

// SlotEngine implements ports.SlotMachine for a fixed 5x3 configuration.
// Spin is a pure function of its draw inputs, which keeps outcomes
// reproducible from a revealed seed.
type SlotEngine struct {
	cfg *domain.SlotConfig
}

// NewSlotEngine creates a slot evaluator for one machine configuration.
func NewSlotEngine(cfg *domain.SlotConfig) *SlotEngine {
	return &SlotEngine{cfg: cfg}
}

// Config returns the machine configuration.
func (e *SlotEngine) Config() *domain.SlotConfig {
	return e.cfg
}

// Spin maps one draw value per reel to stop positions, the visible 3-row
// window, and per-payline multipliers.
func (e *SlotEngine) Spin(draws []float64) (*domain.SpinResult, error) {
	if len(draws) != len(e.cfg.Reels) {
		return nil, fmt.Errorf("expected %d draws, got %d", len(e.cfg.Reels), len(draws))
	}

	stops := make([]int, len(e.cfg.Reels))
	grid := make([][]string, len(e.cfg.Reels))
	for i, strip := range e.cfg.Reels {
		stops[i] = int(math.Floor(draws[i] * float64(len(strip))))
		grid[i] = make([]string, 3)
		for row := 0; row < 3; row++ {
			grid[i][row] = strip[(stops[i]+row)%len(strip)]
		}
	}

	lines := make([]int64, len(e.cfg.Paylines))
	var total int64
	for li, line := range e.cfg.Paylines {
		lines[li] = e.scoreLine(grid, line)
		total += lines[li]
	}

	return &domain.SpinResult{
		Stops:      stops,
		Grid:       grid,
		Lines:      lines,
		Multiplier: total,
	}, nil
}

// scoreLine evaluates one payline left to right. The anchor is the first
// non-wild symbol; wilds extend any run but never anchor it, and the
// scatter neither anchors nor substitutes. Runs of 3, 4 or 5 pay the
// anchor's table entry.
func (e *SlotEngine) scoreLine(grid [][]string, line domain.Payline) int64 {
	symbols := make([]string, len(line))
	for reel, row := range line {
		symbols[reel] = grid[reel][row]
	}

	var anchor string
	anchored := symbols[0] != e.cfg.Wild
	if anchored {
		anchor = symbols[0]
	}

	count := 1
	for i := 1; i < len(symbols); i++ {
		s := symbols[i]
		switch {
		case anchored && (s == anchor || s == e.cfg.Wild):
			count++
		case !anchored && s == e.cfg.Wild:
			count++
		case !anchored && s != e.cfg.Scatter:
			count++
			anchor = s
			anchored = true
		default:
			return e.payFor(anchor, anchored, count)
		}
	}
	return e.payFor(anchor, anchored, count)
}

func (e *SlotEngine) payFor(anchor string, anchored bool, count int) int64 {
	if !anchored {
		// The whole run was wild: no anchor, no pay.
		return 0
	}
	pays, ok := e.cfg.Paytable[anchor]
	if !ok {
		return 0
	}
	switch {
	case count >= 5:
		return pays[0]
	case count == 4:
		return pays[1]
	case count == 3:
		return pays[2]
	default:
		return 0
	}
}

// PayoutAmount prices a spin multiplier against a wager in coin cents.
// The paytable is denominated against BetUnit, so the amount scales
// linearly with the wager; integer math truncates sub-cent remainders.
func (e *SlotEngine) PayoutAmount(multiplier, wager int64) int64 {
	return multiplier * wager / e.cfg.BetUnit
}
