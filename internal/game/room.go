// internal/game/room.go
package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tmatias/uno/internal/protocol"
)

// handSize is the number of cards dealt to each player at game start.
const handSize = 8

// Room holds the entire state for a single game session in memory. All
// mutations happen under Mu, one event at a time; rooms never share
// mutable state with each other.
type Room struct {
	ID     uuid.UUID
	Active bool

	// players is keyed by player id; order preserves join order, which
	// determines host selection and turn rotation.
	players map[uuid.UUID]*Player
	order   []uuid.UUID

	// Deck's draw end is the last element. Discard holds the most
	// recently placed card at index 0.
	Deck    []Card
	Discard []Card

	// Turn state. current indexes into order; direction is +1 or -1 and
	// flips on Reverse; skips counts Block cards placed this turn.
	current   int
	direction int
	skips     int

	stats Statistics

	// Rng drives deck shuffling. Exposed so tests can seed it.
	Rng *rand.Rand

	// OnEmpty is invoked after the last player leaves, typically to
	// remove the room from its store.
	OnEmpty func(roomID uuid.UUID)

	Mu sync.Mutex
}

// NewRoom builds an empty waiting room with a time-seeded random source.
func NewRoom() *Room {
	id, _ := uuid.NewRandom()
	return &Room{
		ID:        id,
		players:   make(map[uuid.UUID]*Player),
		Deck:      []Card{},
		Discard:   []Card{},
		direction: 1,
		Rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Join inserts a new player with placeholder identity. No-op if the
// player is already present. Host and username are assigned later by
// InitPlayer.
func (r *Room) Join(playerID uuid.UUID, sink Sink) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, exists := r.players[playerID]; exists {
		return
	}
	r.players[playerID] = NewPlayer(playerID, sink)
	r.order = append(r.order, playerID)
}

// InitPlayer finalizes a player's identity: sets the username, marks
// them connected, and grants host if they are the only roster entry.
// The new player receives a roster snapshot, everyone else a Connect
// notice, and the host a private server message.
func (r *Room) InitPlayer(playerID uuid.UUID, username string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	host := len(r.players) == 1

	p.Username = username
	p.Connected = true
	p.IsHost = host

	r.emit(playerID, protocol.GameData(playerID, username, r.roster()))
	r.broadcastExceptSelf(playerID, protocol.Connect(playerID, username))

	if host {
		r.emit(playerID, protocol.ServerMessage("You are the host"))
	}
}

// Leave removes the player if present; no-op otherwise. Leaving an
// active game force-ends it for everyone. If the leaver was host, the
// oldest remaining player inherits the role.
func (r *Room) Leave(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	wasHost := p.IsHost
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.broadcast(protocol.Disconnect(playerID, p.Username))

	if wasHost && len(r.order) > 0 {
		next := r.players[r.order[0]]
		next.IsHost = true
		r.emit(next.ID, protocol.ServerMessage("You are the host"))
	}

	if r.Active {
		r.broadcast(protocol.ServerMessage("Game ended due to one of the players leaving"))
		r.end()
	}

	if len(r.players) == 0 && r.OnEmpty != nil {
		r.OnEmpty(r.ID)
	}
}

// HandleStart processes a start request from playerID. Only the host may
// start, and only while the room is waiting.
func (r *Room) HandleStart(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !p.IsHost {
		r.emit(playerID, protocol.Error(protocol.CodeHostOnly, "only the host can start the game"))
		return
	}
	if r.Active {
		r.emit(playerID, protocol.Error(protocol.CodeGameState, "the game is already running"))
		return
	}
	r.start(playerID)
}

// start builds a fresh shuffled deck, places the start card, deals every
// player a hand, and opens the first turn. Assumes lock is held.
func (r *Room) start(hostID uuid.UUID) {
	deck := GenerateDeck(r.Rng)
	startCard, err := SelectStartCard(&deck)
	if err != nil {
		// Practically impossible with the fixed deck composition, but the
		// room must not be left half-started.
		log.Printf("room %s: start aborted: %v", r.ID, err)
		r.emit(hostID, protocol.Error(protocol.CodeCannotStart, "no allowed start card in the deck"))
		return
	}

	r.Deck = deck
	r.Discard = []Card{startCard}
	r.Active = true

	for _, id := range r.order {
		p := r.players[id]
		p.Hand = make([]Card, 0, handSize)
		for i := 0; i < handSize; i++ {
			card, ok := r.drawFromDeck()
			if !ok {
				break
			}
			p.Hand = append(p.Hand, card)
		}
		p.ResetTurn()
	}

	r.current = 0
	r.direction = 1
	r.skips = 0
	r.stats.GameStarted(len(r.players))

	r.broadcast(protocol.ServerMessage("The host has started the game"))
	r.announceTurn()
}

// HandlePlayCard attempts to place the identified card from the player's
// hand onto the discard pile. Illegal attempts are rejected with an
// Error payload and leave the room untouched.
func (r *Room) HandlePlayCard(playerID uuid.UUID, kind Kind, color Color) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !r.Active {
		r.emit(playerID, protocol.Error(protocol.CodeGameState, "the game has not started"))
		return
	}
	if !r.isTurn(playerID) {
		r.emit(playerID, protocol.Error(protocol.CodeNotYourTurn, "it is not your turn"))
		return
	}

	card := Card{Kind: kind, Color: color}
	if !containsCard(LegalPlays(r.topCard(), p.Hand, playerID), card) {
		r.emit(playerID, protocol.Error(protocol.CodeIllegalCard, "that card cannot be played right now"))
		return
	}
	played, ok := p.removeCard(kind, color)
	if !ok {
		r.emit(playerID, protocol.Error(protocol.CodeIllegalCard, "that card is not in your hand"))
		return
	}

	played.Owner = playerID
	r.Discard = append([]Card{played}, r.Discard...)
	p.RecordPlace()

	switch played.Kind {
	case Reverse:
		r.direction = -r.direction
	case Block:
		r.skips++
	}

	r.broadcast(protocol.ServerMessage(p.Username + " placed " + played.String()))

	if len(p.Hand) == 0 {
		r.end()
	}
}

// HandleDraw moves one card from the deck into the player's hand. When
// the deck runs dry the discard pile below the top card is reshuffled
// back in.
func (r *Room) HandleDraw(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !r.Active {
		r.emit(playerID, protocol.Error(protocol.CodeGameState, "the game has not started"))
		return
	}
	if !r.isTurn(playerID) {
		r.emit(playerID, protocol.Error(protocol.CodeNotYourTurn, "it is not your turn"))
		return
	}

	card, ok := r.drawFromDeck()
	if !ok {
		r.emit(playerID, protocol.ServerMessage("The deck is empty"))
		return
	}
	p.Hand = append(p.Hand, card)
	p.RecordDraw()

	r.emit(playerID, protocol.ServerMessage("You drew "+card.String()))
	r.broadcastExceptSelf(playerID, protocol.ServerMessage(p.Username+" drew a card"))
}

// HandleEndTurn passes the turn to the next player, provided the acting
// player has met the turn action budget.
func (r *Room) HandleEndTurn(playerID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	if !r.Active {
		r.emit(playerID, protocol.Error(protocol.CodeGameState, "the game has not started"))
		return
	}
	if !r.isTurn(playerID) {
		r.emit(playerID, protocol.Error(protocol.CodeNotYourTurn, "it is not your turn"))
		return
	}
	if !p.CanEndTurn() {
		r.emit(playerID, protocol.Error(protocol.CodeTurnNotOver, "place a card or draw three before ending your turn"))
		return
	}

	p.ResetTurn()
	r.advanceTurn()
	r.announceTurn()
}

// HandleChat rebroadcasts a chat line under the sender's username.
func (r *Room) HandleChat(playerID uuid.UUID, text string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return
	}
	r.broadcast(protocol.Message(p.Username, text))
}

// End force-ends a running game. Safe to call while waiting; it is then
// a no-op.
func (r *Room) End() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if !r.Active {
		return
	}
	r.end()
}

// end determines the winner and placements, broadcasts the win summary,
// and resets the room so a new game can start with the same roster.
// Assumes lock is held and Active is true.
func (r *Room) end() {
	r.stats.GameEnded(len(r.players))

	placements := r.sortByHandSize()

	winnerID := uuid.Nil
	winnerName := ""
	others := []string{}
	if len(placements) > 0 {
		winnerID = placements[0].ID
		winnerName = placements[0].Username
		for _, p := range placements[1:] {
			others = append(others, p.Username)
		}
	}

	r.broadcast(protocol.WinUpdate(winnerID, winnerName, others, r.stats.Wire()))

	r.Active = false
	r.Deck = []Card{}
	r.Discard = []Card{}
	for _, p := range r.players {
		p.Hand = []Card{}
		p.ResetTurn()
	}
	r.current = 0
	r.direction = 1
	r.skips = 0
}

// Emit delivers a payload to exactly one player; unknown ids are a
// benign no-op.
func (r *Room) Emit(playerID uuid.UUID, data []byte) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.emit(playerID, data)
}

// Broadcast delivers a payload to every player in join order.
func (r *Room) Broadcast(data []byte) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcast(data)
}

// BroadcastExceptSelf delivers a payload to everyone but selfID.
func (r *Room) BroadcastExceptSelf(selfID uuid.UUID, data []byte) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.broadcastExceptSelf(selfID, data)
}

// Player returns the roster entry for id, if present.
func (r *Room) Player(id uuid.UUID) (*Player, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	p, ok := r.players[id]
	return p, ok
}

// PlayerCount returns the current roster size.
func (r *Room) PlayerCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.players)
}

// CurrentTurn returns the id of the player holding the turn, or
// uuid.Nil while the room is waiting.
func (r *Room) CurrentTurn() uuid.UUID {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if !r.Active || len(r.order) == 0 {
		return uuid.Nil
	}
	return r.order[r.current]
}

// emit sends to one player's sink. Assumes lock is held.
func (r *Room) emit(playerID uuid.UUID, data []byte) {
	p, ok := r.players[playerID]
	if !ok {
		log.Printf("room %s: no player %s to send to", r.ID, playerID)
		return
	}
	p.Send(data)
}

// broadcast sends to every player in join order. Assumes lock is held.
func (r *Room) broadcast(data []byte) {
	for _, id := range r.order {
		r.players[id].Send(data)
	}
}

// broadcastExceptSelf sends to everyone but selfID. Assumes lock is held.
func (r *Room) broadcastExceptSelf(selfID uuid.UUID, data []byte) {
	for _, id := range r.order {
		if id != selfID {
			r.players[id].Send(data)
		}
	}
}

// roster snapshots (id, username) pairs in join order. Assumes lock is
// held.
func (r *Room) roster() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, protocol.PlayerInfo{ID: id, Username: r.players[id].Username})
	}
	return infos
}

// isTurn reports whether playerID holds the current turn. Assumes lock
// is held.
func (r *Room) isTurn(playerID uuid.UUID) bool {
	return r.Active && len(r.order) > 0 && r.order[r.current] == playerID
}

// topCard returns the discard pile's front card. Assumes lock is held
// and the discard pile is non-empty while active.
func (r *Room) topCard() Card {
	return r.Discard[0]
}

// drawFromDeck removes one card from the draw end, reshuffling the
// discard pile below its top card back into the deck when needed.
// Assumes lock is held.
func (r *Room) drawFromDeck() (Card, bool) {
	if len(r.Deck) == 0 {
		if len(r.Discard) <= 1 {
			return Card{}, false
		}
		recycled := r.Discard[1:]
		r.Discard = r.Discard[:1]
		for i := range recycled {
			recycled[i].Owner = uuid.Nil
		}
		r.Deck = append(r.Deck, recycled...)
		r.Rng.Shuffle(len(r.Deck), func(i, j int) {
			r.Deck[i], r.Deck[j] = r.Deck[j], r.Deck[i]
		})
		log.Printf("room %s: reshuffled %d discarded card(s) into the deck", r.ID, len(r.Deck))
	}
	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	return card, true
}

// advanceTurn moves the turn pointer honoring direction and any pending
// Block skips. Assumes lock is held.
func (r *Room) advanceTurn() {
	if len(r.order) == 0 {
		return
	}
	steps := 1 + r.skips
	r.skips = 0
	n := len(r.order)
	r.current = ((r.current+steps*r.direction)%n + n) % n
}

// announceTurn tells the room whose turn it is. Assumes lock is held.
func (r *Room) announceTurn() {
	if !r.Active || len(r.order) == 0 {
		return
	}
	cur := r.players[r.order[r.current]]
	r.broadcast(protocol.ServerMessage("It is " + cur.Username + "'s turn"))
}

// sortByHandSize ranks players by ascending hand size, ties broken by
// join order. Assumes lock is held.
func (r *Room) sortByHandSize() []*Player {
	ranked := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		ranked = append(ranked, r.players[id])
	}
	// Insertion sort keeps the join-order tie-break stable.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && len(ranked[j].Hand) < len(ranked[j-1].Hand); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

func containsCard(cards []Card, want Card) bool {
	for _, c := range cards {
		if c.Matches(want) {
			return true
		}
	}
	return false
}
