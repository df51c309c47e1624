package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// ErrChipsNotConserved is returned when a round's chip movement disagrees
// with its ledger
var ErrChipsNotConserved = errors.New("chips not conserved")

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Seed     int64
	Bet      int // Main bet on every hand slot
	SideBet  int // Stake on each side bet of every slot, 0 to skip
	Bankroll int // Chips a worker starts with and is topped up to
	Rules    blackjack.Rules
	Logger   *log.Logger
}

// Simulator runs blackjack round simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Rules == (blackjack.Rules{}) {
		config.Rules = blackjack.DefaultRules()
	}
	if config.Bankroll == 0 {
		config.Bankroll = 100 * config.Rules.MaxBet
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: config.Logger.WithPrefix("simulator")}
}

// Run plays the configured number of rounds across the workers and returns
// the merged statistics
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Rounds < 1 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if err := s.config.Rules.Validate(); err != nil {
		return nil, err
	}
	if s.config.Bet < 1 || s.config.SideBet < 0 {
		return nil, fmt.Errorf("bet %d and side bet %d must be positive", s.config.Bet, s.config.SideBet)
	}
	if total := s.config.Rules.Hands * (s.config.Bet + 2*s.config.SideBet); total < s.config.Rules.MinBet || total > s.config.Rules.MaxBet {
		return nil, fmt.Errorf("total bet %d per round outside table limits %d-%d",
			total, s.config.Rules.MinBet, s.config.Rules.MaxBet)
	}

	perWorker := make([]*statistics.Statistics, s.config.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range s.config.Workers {
		rounds := s.config.Rounds / s.config.Workers
		if w < s.config.Rounds%s.config.Workers {
			rounds++
		}
		seed := randutil.Derive(s.config.Seed, w)
		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, seed, rounds)
			perWorker[w] = stats
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, ws := range perWorker {
		stats.Merge(ws)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) bets() []blackjack.Bet {
	bets := make([]blackjack.Bet, s.config.Rules.Hands)
	for i := range bets {
		bets[i] = blackjack.Bet{
			Main:               s.config.Bet,
			TwentyOnePlusThree: s.config.SideBet,
			PerfectPairs:       s.config.SideBet,
		}
	}
	return bets
}

func (s *Simulator) runWorker(ctx context.Context, worker int, seed int64, rounds int) (*statistics.Statistics, error) {
	logger := s.logger.With("worker", worker)
	table, err := blackjack.NewTable(s.config.Rules, randutil.New(seed), logger)
	if err != nil {
		return nil, err
	}
	bot := strategy.NewBot(logger)
	bets := s.bets()

	snap, err := table.NewRound(fmt.Sprintf("sim-%d", worker), s.config.Bankroll)
	if err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for n := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if snap.Player.Chips < 4*s.config.Rules.MaxBet {
			snap.Player.Chips = s.config.Bankroll
		}

		var result statistics.RoundResult
		snap, result, err = s.playRound(table, bot, snap, bets)
		if err != nil {
			return nil, fmt.Errorf("worker %d round %d (seed %d): %w", worker, n+1, seed, err)
		}
		result.Seed = seed
		stats.Add(result)
	}
	logger.Debug("Worker finished", "rounds", rounds, "mean", stats.Mean())
	return stats, nil
}

// playRound plays one round from betting through reset and checks that
// the chips moved match the ledger
func (s *Simulator) playRound(table *blackjack.Table, bot *strategy.Bot, snap blackjack.Snapshot, bets []blackjack.Bet) (blackjack.Snapshot, statistics.RoundResult, error) {
	before := snap.Player.Chips
	sideStakes := 0
	for _, b := range bets {
		sideStakes += b.TwentyOnePlusThree + b.PerfectPairs
	}

	snap, err := table.Bet(snap, bets)
	if err != nil {
		return snap, statistics.RoundResult{}, err
	}
	sideHits := 0
	for _, h := range snap.Hands {
		if h.SideBets.TwentyOnePayout > 0 {
			sideHits++
		}
		if h.SideBets.PerfectPairsPayout > 0 {
			sideHits++
		}
	}

	if snap, err = bot.PlayTurns(table, snap); err != nil {
		return snap, statistics.RoundResult{}, err
	}
	if snap, err = table.Finish(snap); err != nil {
		return snap, statistics.RoundResult{}, err
	}
	if snap.Phase != blackjack.PhaseRoundOver {
		return snap, statistics.RoundResult{}, fmt.Errorf("round ended in %s", snap.Phase)
	}

	result := statistics.RoundResult{
		Net:         snap.Ledger.Net(),
		Staked:      snap.Ledger.Staked,
		Credited:    snap.Ledger.Credited,
		SideBetHits: sideHits,
		Splits:      len(snap.Hands) - snap.NumHands,
	}

	staked := sideStakes
	dealerValue := blackjack.HandValue(snap.Dealer)
	dealerBlackjack := blackjack.IsBlackjack(snap.Dealer)
	for _, h := range snap.Hands {
		if !h.InPlay() {
			continue
		}
		staked += h.MainBet
		if h.MainBet == 2*s.config.Bet {
			result.Doubles++
		}
		result.Hands = append(result.Hands, classify(&h, dealerValue, dealerBlackjack))
	}

	if snap.Ledger.Staked != staked || snap.Player.Chips != before+snap.Ledger.Net() {
		return snap, result, fmt.Errorf("staked %d (ledger %d), chips %d -> %d, ledger net %d: %w",
			staked, snap.Ledger.Staked, before, snap.Player.Chips, snap.Ledger.Net(), ErrChipsNotConserved)
	}

	snap, err = table.ResetRound(snap)
	return snap, result, err
}

func classify(h *blackjack.HandState, dealerValue int, dealerBlackjack bool) statistics.HandOutcome {
	value := h.Value()
	switch {
	case h.Blackjack && dealerBlackjack:
		return statistics.Push
	case h.Blackjack:
		return statistics.BlackjackWin
	case h.Busted:
		return statistics.Bust
	case dealerBlackjack:
		return statistics.Loss
	case dealerValue > 21 || value > dealerValue:
		return statistics.Win
	case value == dealerValue:
		return statistics.Push
	}
	return statistics.Loss
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Rounds played: %d (%d hands)\n", stats.Rounds, stats.Hands)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f chips/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f chips/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f chips\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f chips\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] chips/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== HAND OUTCOMES ===\n")
	if stats.Hands > 0 {
		pct := func(n int) float64 { return float64(n) / float64(stats.Hands) * 100 }
		fmt.Fprintf(w, "Wins: %d (%.1f%%), of which blackjacks: %d\n", stats.Wins, pct(stats.Wins), stats.Blackjacks)
		fmt.Fprintf(w, "Losses: %d (%.1f%%), of which busts: %d\n", stats.Losses, pct(stats.Losses), stats.Busts)
		fmt.Fprintf(w, "Pushes: %d (%.1f%%)\n", stats.Pushes, pct(stats.Pushes))
	}
	fmt.Fprintf(w, "Doubles: %d, splits: %d, side-bet hits: %d\n", stats.Doubles, stats.Splits, stats.SideBetHits)

	fmt.Fprintf(w, "\n=== LEDGER ===\n")
	fmt.Fprintf(w, "Staked: %d, credited: %d, house edge: %.3f%%\n",
		stats.TotalStaked, stats.TotalCredited, stats.HouseEdge()*100)
}
