package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// round builds a balanced result with the given net on a 10-chip stake
func round(net int, hands ...HandOutcome) RoundResult {
	return RoundResult{Net: net, Staked: 10, Credited: 10 + net, Hands: hands}
}

func TestStatistics_Empty(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.HouseEdge())
}

func TestStatistics_SingleValue(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	stats.Add(RoundResult{Net: 15, Staked: 10, Credited: 25, Seed: 12345, Hands: []HandOutcome{BlackjackWin}, SideBetHits: 1})

	assert.Equal(t, 1, stats.Rounds)
	assert.InDelta(t, 15.0, stats.Mean(), 1e-9)
	assert.Zero(t, stats.Variance())
	assert.InDelta(t, 15.0, stats.Median(), 1e-9)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Blackjacks)
	assert.Equal(t, 1, stats.SideBetHits)
	assert.True(t, stats.IsLedgerBalanced())
}

func TestStatistics_MultipleValues(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	results := []RoundResult{
		round(10, Win),
		round(-20, Loss, Bust),
		round(30, Win, Win, BlackjackWin),
		round(0, Push),
		round(-10, Loss),
	}
	for _, r := range results {
		stats.Add(r)
	}

	assert.Equal(t, 5, stats.Rounds)
	assert.InDelta(t, 2.0, stats.Mean(), 1e-9)
	assert.InDelta(t, 0.0, stats.Median(), 1e-9)
	assert.Equal(t, 8, stats.Hands)
	assert.Equal(t, 4, stats.Wins)
	assert.Equal(t, 3, stats.Losses)
	assert.Equal(t, 1, stats.Pushes)
	assert.Equal(t, 1, stats.Busts)
	assert.Equal(t, 1, stats.Blackjacks)
	assert.InDelta(t, -0.2, stats.HouseEdge(), 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_Percentiles(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	for i := 1; i <= 5; i++ {
		stats.Add(round(i))
	}

	tests := []struct {
		percentile float64
		expected   float64
	}{
		{0.0, 1.0},
		{0.25, 2.0},
		{0.5, 3.0},
		{0.75, 4.0},
		{1.0, 5.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, stats.Percentile(tt.percentile), 1e-9, "percentile %.2f", tt.percentile)
	}
}

func TestStatistics_ConfidenceInterval(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	for _, v := range []int{1, 2, 3, 4, 5} {
		stats.Add(round(v))
	}

	low, high := stats.ConfidenceInterval95()
	assert.InDelta(t, stats.Mean(), (low+high)/2, 1e-9)
	assert.Greater(t, high-low, 0.0)
}

func TestStatistics_Variance(t *testing.T) {
	t.Parallel()
	stats := &Statistics{}
	for _, v := range []int{1, 3, 5} {
		stats.Add(round(v))
	}
	assert.InDelta(t, 4.0, stats.Variance(), 1e-9)
	assert.InDelta(t, 2.0, stats.StdDev(), 1e-9)
}

func TestStatistics_Merge(t *testing.T) {
	t.Parallel()
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	for i, r := range []RoundResult{round(10, Win), round(-10, Loss), round(0, Push), round(20, Win, Win)} {
		all.Add(r)
		if i%2 == 0 {
			a.Add(r)
		} else {
			b.Add(r)
		}
	}
	a.Merge(b)

	assert.Equal(t, all.Rounds, a.Rounds)
	assert.InDelta(t, all.Mean(), a.Mean(), 1e-9)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	assert.Equal(t, all.Wins, a.Wins)
	assert.Equal(t, all.TotalStaked, a.TotalStaked)
	assert.ElementsMatch(t, all.Values, a.Values)
	require.NoError(t, a.Validate())
}

func TestStatistics_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		stats Statistics
		want  string
	}{
		{
			name:  "ledger mismatch",
			stats: Statistics{Rounds: 1, SumNet: 5, Values: []float64{5}, TotalStaked: 10, TotalCredited: 10},
			want:  "ledger mismatch",
		},
		{
			name:  "no rounds",
			stats: Statistics{},
			want:  "invalid rounds count",
		},
		{
			name:  "values mismatch",
			stats: Statistics{Rounds: 2, Values: []float64{0}},
			want:  "values array length",
		},
		{
			name:  "outcomes mismatch",
			stats: Statistics{Rounds: 1, Values: []float64{0}, Hands: 2, Wins: 1},
			want:  "hand outcomes",
		},
		{
			name:  "more busts than losses",
			stats: Statistics{Rounds: 1, Values: []float64{0}, Hands: 1, Pushes: 1, Busts: 1},
			want:  "exceed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.stats.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
