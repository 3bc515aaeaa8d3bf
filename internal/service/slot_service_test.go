package service

import (
	"strings"
	"testing"

	"sweeps-casino/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawsForStops builds draw values that land exactly on the given stop
// positions for 20-symbol strips.
func drawsForStops(stops ...int) []float64 {
	draws := make([]float64, len(stops))
	for i, s := range stops {
		draws[i] = (float64(s) + 0.5) / 20
	}
	return draws
}

func TestSlot_Spin_StopsAndGrid(t *testing.T) {
	e := NewSlotEngine(&domain.NeonHeist)

	spin, err := e.Spin(drawsForStops(0, 0, 0, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 0, 0}, spin.Stops)
	for reel := 0; reel < 5; reel++ {
		assert.Equal(t, []string{"W", "S", "M"}, spin.Grid[reel], "reel %d window", reel)
	}
}

func TestSlot_Spin_WindowWrapsStrip(t *testing.T) {
	e := NewSlotEngine(&domain.NeonHeist)

	spin, err := e.Spin(drawsForStops(18, 18, 18, 18, 18))
	require.NoError(t, err)

	// Stop 18 on a 20-symbol strip reads positions 18, 19 and 0.
	assert.Equal(t, []string{"A", "K", "W"}, spin.Grid[0])
	assert.Equal(t, []string{"K", "Q", "W"}, spin.Grid[1])
}

func TestSlot_Spin_LineMultipliers(t *testing.T) {
	e := NewSlotEngine(&domain.NeonHeist)

	tests := []struct {
		name  string
		stops []int
		lines []int64
		total int64
	}{
		{
			// Middle row is five M; top row is all wild with no anchor
			// and pays nothing; the S row is scatter, never a line win.
			name:  "wild column",
			stops: []int{0, 0, 0, 0, 0},
			lines: []int64{0, 0, 200, 0, 0},
			total: 200,
		},
		{
			name:  "three straight rows",
			stops: []int{5, 5, 5, 5, 5},
			lines: []int64{40, 30, 20, 0, 0},
			total: 90,
		},
		{
			// Leading wild defers the anchor to the first literal symbol.
			name:  "wild extends from the left",
			stops: []int{0, 5, 5, 5, 5},
			lines: []int64{40, 0, 0, 0, 0},
			total: 40,
		},
		{
			// Trailing wild completes the A run; scatter cuts K at four.
			name:  "wild and scatter on the last reel",
			stops: []int{5, 5, 5, 5, 0},
			lines: []int64{40, 15, 10, 0, 0},
			total: 65,
		},
		{
			name:  "scatter breaks mid-line",
			stops: []int{5, 5, 5, 0, 5},
			lines: []int64{40, 3, 2, 0, 0},
			total: 45,
		},
		{
			name:  "all-wild row pays nothing",
			stops: []int{18, 18, 18, 18, 18},
			lines: []int64{0, 0, 0, 0, 0},
			total: 0,
		},
		{
			name:  "premium rows",
			stops: []int{2, 2, 2, 2, 2},
			lines: []int64{200, 100, 60, 0, 0},
			total: 360,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spin, err := e.Spin(drawsForStops(tt.stops...))
			require.NoError(t, err)
			assert.Equal(t, tt.stops, spin.Stops)
			assert.Equal(t, tt.lines, spin.Lines)
			assert.Equal(t, tt.total, spin.Multiplier)
		})
	}
}

func TestSlot_Spin_SeededRound(t *testing.T) {
	f := NewCommitRevealFairness()
	e := NewSlotEngine(&domain.NeonHeist)

	draws := f.Draw(strings.Repeat("a", 64), "demo", 1, 5)
	spin, err := e.Spin(draws)
	require.NoError(t, err)

	assert.Equal(t, []int{18, 11, 7, 1, 2}, spin.Stops)
	assert.Equal(t, int64(0), spin.Multiplier)
}

func TestSlot_Spin_WrongDrawCount(t *testing.T) {
	e := NewSlotEngine(&domain.NeonHeist)

	_, err := e.Spin([]float64{0.1, 0.2, 0.3})
	assert.Error(t, err)

	_, err = e.Spin(nil)
	assert.Error(t, err)
}

func TestSlot_PayoutAmount(t *testing.T) {
	e := NewSlotEngine(&domain.NeonHeist)

	// Wager equal to BetUnit pays the multiplier itself.
	assert.Equal(t, int64(200), e.PayoutAmount(200, 20))
	// Scales linearly with the wager.
	assert.Equal(t, int64(1000), e.PayoutAmount(200, 100))
	// Integer math truncates toward zero.
	assert.Equal(t, int64(0), e.PayoutAmount(3, 5))
	assert.Equal(t, int64(0), e.PayoutAmount(0, 100))
}
