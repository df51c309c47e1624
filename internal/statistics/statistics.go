package statistics

import (
	"fmt"
	"math"
	"sort"
)

// HandOutcome is how a single main bet was resolved
type HandOutcome int

const (
	Win HandOutcome = iota
	Loss
	Push
	BlackjackWin
	Bust
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Net         int           // Net chips won/lost this round
	Staked      int           // Chips put at risk, including doubles, splits and side bets
	Credited    int           // Chips returned to the player
	Seed        int64         // Worker seed the round was played under
	Hands       []HandOutcome // One entry per settled hand
	SideBetHits int           // Side bets that paid
	Doubles     int
	Splits      int
}

// Statistics tracks simulation results across many rounds
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	TotalStaked   int
	TotalCredited int

	Hands       int
	Wins        int
	Losses      int
	Pushes      int
	Blackjacks  int
	Busts       int
	SideBetHits int
	Doubles     int
	Splits      int
}

// Mean returns the mean net chips per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge returns the player's loss as a fraction of everything staked
func (s *Statistics) HouseEdge() float64 {
	if s.TotalStaked == 0 {
		return 0
	}
	return float64(s.TotalStaked-s.TotalCredited) / float64(s.TotalStaked)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.TotalStaked += result.Staked
	s.TotalCredited += result.Credited
	s.SideBetHits += result.SideBetHits
	s.Doubles += result.Doubles
	s.Splits += result.Splits

	for _, o := range result.Hands {
		s.Hands++
		switch o {
		case Win:
			s.Wins++
		case Loss:
			s.Losses++
		case Push:
			s.Pushes++
		case BlackjackWin:
			s.Wins++
			s.Blackjacks++
		case Bust:
			s.Losses++
			s.Busts++
		}
	}
}

// Merge folds another worker's statistics into s
func (s *Statistics) Merge(o *Statistics) {
	s.Rounds += o.Rounds
	s.SumNet += o.SumNet
	s.SumNet2 += o.SumNet2
	s.Values = append(s.Values, o.Values...)
	s.TotalStaked += o.TotalStaked
	s.TotalCredited += o.TotalCredited
	s.Hands += o.Hands
	s.Wins += o.Wins
	s.Losses += o.Losses
	s.Pushes += o.Pushes
	s.Blackjacks += o.Blackjacks
	s.Busts += o.Busts
	s.SideBetHits += o.SideBetHits
	s.Doubles += o.Doubles
	s.Splits += o.Splits
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that the summed per-round nets agree with the
// chips staked and credited
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-float64(s.TotalCredited-s.TotalStaked)) <= 1e-6
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: net=%.0f, staked=%d, credited=%d",
			s.SumNet, s.TotalStaked, s.TotalCredited)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.Wins+s.Losses+s.Pushes != s.Hands {
		return fmt.Errorf("hand outcomes (%d) do not match hands played (%d)",
			s.Wins+s.Losses+s.Pushes, s.Hands)
	}

	if s.Blackjacks > s.Wins || s.Busts > s.Losses {
		return fmt.Errorf("blackjacks (%d) or busts (%d) exceed wins (%d) or losses (%d)",
			s.Blackjacks, s.Busts, s.Wins, s.Losses)
	}

	return nil
}
