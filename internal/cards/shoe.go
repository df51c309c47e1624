package cards

import (
	rand "math/rand/v2"
	"slices"
)

// DeckSize is the number of cards in one deck
const DeckSize = 52

// Shoe is the ordered pool of undealt cards. It exclusively owns its cards;
// dealt cards are returned by value and never alias the shoe.
type Shoe struct {
	decks int
	cards []Card
	rng   *rand.Rand
}

// NewShoe builds a shuffled shoe of decks × 52 cards
func NewShoe(decks int, rng *rand.Rand) *Shoe {
	if decks < 1 {
		decks = 1
	}
	s := &Shoe{decks: decks, rng: rng}
	s.Reshuffle()
	return s
}

// RestoreShoe rebuilds a shoe with an exact remaining card order.
// The cards are copied.
func RestoreShoe(decks int, remaining []Card, rng *rand.Rand) *Shoe {
	return &Shoe{
		decks: decks,
		cards: slices.Clone(remaining),
		rng:   rng,
	}
}

// Reshuffle regenerates a full shoe and shuffles it
func (s *Shoe) Reshuffle() {
	s.cards = make([]Card, 0, s.decks*DeckSize)
	for range s.decks {
		for _, suit := range Suits {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Deal removes and returns the top card, reshuffling a fresh shoe first if empty
func (s *Shoe) Deal() Card {
	if len(s.cards) == 0 {
		s.Reshuffle()
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// Decks returns the number of decks the shoe is built from
func (s *Shoe) Decks() int {
	return s.decks
}

// Size returns the number of cards in a full shoe
func (s *Shoe) Size() int {
	return s.decks * DeckSize
}

// Remaining returns the number of undealt cards
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Penetrated reports whether fewer than the given fraction of cards remain
func (s *Shoe) Penetrated(fraction float64) bool {
	return float64(len(s.cards)) < fraction*float64(s.Size())
}

// Cards returns a copy of the remaining cards in deal order.
// Only the snapshot codec should need this.
func (s *Shoe) Cards() []Card {
	return slices.Clone(s.cards)
}
