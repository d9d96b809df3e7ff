// internal/game/card.go
package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Kind identifies a card's rank or action.
type Kind string

const (
	Zero     Kind = "Zero"
	One      Kind = "One"
	Two      Kind = "Two"
	Three    Kind = "Three"
	Four     Kind = "Four"
	Five     Kind = "Five"
	Six      Kind = "Six"
	Seven    Kind = "Seven"
	Eight    Kind = "Eight"
	Nine     Kind = "Nine"
	Block    Kind = "Block"
	Reverse  Kind = "Reverse"
	DrawTwo  Kind = "DrawTwo"
	Switch   Kind = "Switch"
	DrawFour Kind = "DrawFour"
)

// Color is one of the four card colors.
type Color string

const (
	Red    Color = "Red"
	Blue   Color = "Blue"
	Green  Color = "Green"
	Yellow Color = "Yellow"
)

// Kinds lists every card kind in deck order.
func Kinds() []Kind {
	return []Kind{Zero, One, Two, Three, Four, Five, Six, Seven, Eight, Nine,
		Block, Reverse, DrawTwo, Switch, DrawFour}
}

// Colors lists the four card colors.
func Colors() []Color {
	return []Color{Red, Blue, Green, Yellow}
}

// Card is a single card. Owner is uuid.Nil while the card sits in the
// deck or before any placement; the discard top's owner disambiguates
// legality.
type Card struct {
	Kind  Kind      `json:"type"`
	Color Color     `json:"color"`
	Owner uuid.UUID `json:"owner"`
}

// HasOwner reports whether the card has been placed by a player.
func (c Card) HasOwner() bool {
	return c.Owner != uuid.Nil
}

// Matches reports whether two cards share kind and color. Ownership is
// ignored.
func (c Card) Matches(other Card) bool {
	return c.Kind == other.Kind && c.Color == other.Color
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s", c.Color, c.Kind)
}

// isSpecial reports whether the kind is playable on any color (Switch,
// DrawFour).
func isSpecial(k Kind) bool {
	return k == Switch || k == DrawFour
}

// isForcedDraw reports whether the kind obligates the next player to
// draw.
func isForcedDraw(k Kind) bool {
	return k == DrawTwo || k == DrawFour
}

// isActionKind reports whether the kind is disallowed as a start card.
func isActionKind(k Kind) bool {
	switch k {
	case Block, Switch, DrawFour, Reverse, DrawTwo:
		return true
	}
	return false
}

// GenerateDeck builds the full 120-card deck, two of every kind/color
// pair, and returns it in a uniformly random permutation drawn from r.
// The last element is the draw end.
func GenerateDeck(r *rand.Rand) []Card {
	deck := make([]Card, 0, 2*len(Colors())*len(Kinds()))
	for _, color := range Colors() {
		for _, kind := range Kinds() {
			deck = append(deck, Card{Kind: kind, Color: color})
			deck = append(deck, Card{Kind: kind, Color: color})
		}
	}
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// SelectStartCard removes and returns the first non-action card found
// scanning from the draw end. It returns an error if the deck holds no
// such card, in which case the deck is left untouched and the game must
// not start.
func SelectStartCard(deck *[]Card) (Card, error) {
	d := *deck
	for i := len(d) - 1; i >= 0; i-- {
		if isActionKind(d[i].Kind) {
			continue
		}
		card := d[i]
		*deck = append(d[:i], d[i+1:]...)
		return card, nil
	}
	return Card{}, fmt.Errorf("deck contains no allowed start card")
}
