package blackjack

import "github.com/lox/blackjack/internal/cards"

// HiddenImage is the image shown for the dealer's face-down card
const HiddenImage = "back.png"

// CardView is a display-safe card
type CardView struct {
	Label  string `json:"label"`
	Image  string `json:"filename"`
	Hidden bool   `json:"hidden,omitempty"`
}

// HandView is one displayed hand slot. Index targets actions; Seat is the
// 1-based position among displayed hands.
type HandView struct {
	Index              int        `json:"index"`
	Seat               int        `json:"seat"`
	Cards              []CardView `json:"hand"`
	Total              int        `json:"total"`
	Soft               bool       `json:"soft"`
	MainBet            int        `json:"main_bet"`
	SideBet21          int        `json:"side_bet_21_3"`
	SideBetPairs       int        `json:"side_bet_perfect_pair"`
	TwentyOnePlusThree string     `json:"twenty_one_plus_three,omitempty"`
	TwentyOnePayout    int        `json:"twenty_one_plus_three_payout"`
	PerfectPairs       string     `json:"perfect_pairs,omitempty"`
	PerfectPairsPayout int        `json:"perfect_pairs_payout"`
	Busted             bool       `json:"busted"`
	Stood              bool       `json:"stood"`
	Blackjack          bool       `json:"blackjack"`
	Active             bool       `json:"is_active"`
	CanDouble          bool       `json:"can_double"`
	CanSplit           bool       `json:"can_split"`
	Result             string     `json:"result_message"`
}

// View is what a caller may show the player. It never contains the shoe
// order and hides the dealer's hole card until the dealer acts.
type View struct {
	PlayerName    string     `json:"player_name"`
	PlayerChips   int        `json:"player_chips"`
	Dealer        []CardView `json:"dealer_hand"`
	DealerTotal   int        `json:"dealer_total"`
	DealerHidden  bool       `json:"dealer_hidden"`
	Hands         []HandView `json:"player_hands"`
	ActiveHand    int        `json:"current_active_hand_index"`
	Phase         Phase      `json:"game_phase"`
	Message       string     `json:"game_message"`
	TotalStaked   int        `json:"total_bet"`
	ShoeRemaining int        `json:"shoe_remaining"`
}

func dealerRevealed(p Phase) bool {
	return p == PhaseDealerTurn || p == PhaseSettlement || p == PhaseRoundOver
}

func cardViews(cs []cards.Card) []CardView {
	out := make([]CardView, len(cs))
	for i, c := range cs {
		out[i] = CardView{Label: c.String(), Image: c.ImageName()}
	}
	return out
}

// Project builds the caller-facing view of a snapshot
func Project(s Snapshot, reveal bool) View {
	v := View{
		PlayerName:    s.Player.Name,
		PlayerChips:   s.Player.Chips,
		Dealer:        cardViews(s.Dealer),
		DealerTotal:   HandValue(s.Dealer),
		Hands:         []HandView{},
		ActiveHand:    s.Active,
		Phase:         s.Phase,
		Message:       s.Message,
		TotalStaked:   s.Ledger.Staked,
		ShoeRemaining: len(s.Shoe.Cards),
	}

	if len(s.Dealer) >= 2 && !reveal && !dealerRevealed(s.Phase) {
		v.Dealer[1] = CardView{Label: "??", Image: HiddenImage, Hidden: true}
		visible := append([]cards.Card{s.Dealer[0]}, s.Dealer[2:]...)
		v.DealerTotal = HandValue(visible)
		v.DealerHidden = true
	}

	for i := range s.Hands {
		h := &s.Hands[i]
		if s.Phase != PhaseBetting && !h.InPlay() {
			continue
		}
		v.Hands = append(v.Hands, HandView{
			Index:              i,
			Seat:               len(v.Hands) + 1,
			Cards:              cardViews(h.Cards),
			Total:              h.Value(),
			Soft:               IsSoft(h.Cards),
			MainBet:            h.MainBet,
			SideBet21:          h.SideBet21,
			SideBetPairs:       h.SideBetPairs,
			TwentyOnePlusThree: h.SideBets.TwentyOnePlusThree.String(),
			TwentyOnePayout:    h.SideBets.TwentyOnePayout,
			PerfectPairs:       h.SideBets.PerfectPairs.String(),
			PerfectPairsPayout: h.SideBets.PerfectPairsPayout,
			Busted:             h.Busted,
			Stood:              h.Stood,
			Blackjack:          h.Blackjack,
			Active:             h.Active,
			CanDouble:          h.CanDouble,
			CanSplit:           h.CanSplit,
			Result:             h.Result,
		})
	}
	return v
}

// ActiveSeat returns the displayed hand currently acting, if any
func (v View) ActiveSeat() (HandView, bool) {
	for _, h := range v.Hands {
		if h.Index == v.ActiveHand && h.Active {
			return h, true
		}
	}
	return HandView{}, false
}
