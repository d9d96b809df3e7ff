// internal/game/player.go
package game

import "github.com/google/uuid"

// placeholderName is a player's username until a Register finalizes it.
const placeholderName = "connecting..."

// Sink delivers one encoded payload to a single player. Delivery is
// best-effort and at-most-once; implementations must not block.
type Sink interface {
	Send(data []byte)
}

// Action is one tracked entry in a player's current turn.
type Action int

const (
	DrawCard Action = iota
	PlaceCard
)

// Player is a single connection's state inside a room. Ownership is
// exclusive to the room's roster; the room's lock guards every field.
type Player struct {
	ID        uuid.UUID
	Username  string
	Connected bool
	IsHost    bool
	Waiting   bool
	Hand      []Card

	sink    Sink
	actions []Action
}

// NewPlayer creates an unregistered player bound to a transport sink.
func NewPlayer(id uuid.UUID, sink Sink) *Player {
	return &Player{
		ID:       id,
		Username: placeholderName,
		Hand:     []Card{},
		sink:     sink,
	}
}

// Send forwards a payload to the player's sink, if any. A nil sink is a
// benign no-op per the transport boundary contract.
func (p *Player) Send(data []byte) {
	if p.sink != nil {
		p.sink.Send(data)
	}
}

// RecordDraw appends a draw to the current turn's action list.
func (p *Player) RecordDraw() {
	p.actions = append(p.actions, DrawCard)
}

// RecordPlace appends a placement to the current turn's action list.
func (p *Player) RecordPlace() {
	p.actions = append(p.actions, PlaceCard)
}

// CanEndTurn reports whether the player has met the turn action budget:
// at least one placement, or at least three draws.
func (p *Player) CanEndTurn() bool {
	var draws, places int
	for _, a := range p.actions {
		switch a {
		case DrawCard:
			draws++
		case PlaceCard:
			places++
		}
	}
	return places >= 1 || draws >= 3
}

// ResetTurn clears the action list when the turn passes on.
func (p *Player) ResetTurn() {
	p.actions = p.actions[:0]
}

// removeCard takes the first card matching kind and color out of the
// hand. Returns the removed card and whether it was found.
func (p *Player) removeCard(kind Kind, color Color) (Card, bool) {
	for i, c := range p.Hand {
		if c.Kind == kind && c.Color == color {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
