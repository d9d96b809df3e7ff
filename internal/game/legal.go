// internal/game/legal.go
package game

import "github.com/google/uuid"

// LegalPlays returns the cards in hand that may legally be placed on top,
// given who placed top. It never mutates its inputs and returns an empty
// slice when nothing qualifies.
//
// Four mutually exclusive regimes apply, in priority order:
//  1. Top placed by the acting player: only same-kind cards (a player may
//     chain identical kinds on their own placement).
//  2. Top has no owner (start card): Switch/DrawFour, same color, or
//     same kind.
//  3. Top is a forced-draw kind placed by another player: only the exact
//     same kind answers it; otherwise the player must draw.
//  4. Top placed by another player, not forced-draw: same rule as 2.
func LegalPlays(top Card, hand []Card, actingPlayer uuid.UUID) []Card {
	legal := []Card{}

	selfChain := top.HasOwner() && top.Owner == actingPlayer
	forced := !selfChain && top.HasOwner() && isForcedDraw(top.Kind)

	for _, card := range hand {
		switch {
		case selfChain:
			if card.Kind == top.Kind {
				legal = append(legal, card)
			}
		case forced:
			if card.Kind == top.Kind {
				legal = append(legal, card)
			}
		default:
			if isSpecial(card.Kind) || card.Color == top.Color || card.Kind == top.Kind {
				legal = append(legal, card)
			}
		}
	}
	return legal
}
