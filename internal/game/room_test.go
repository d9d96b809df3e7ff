// internal/game/room_test.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmatias/uno/internal/protocol"
)

// mockSink collects payloads instead of sending them over a socket.
type mockSink struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (m *mockSink) Send(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, data)
}

func (m *mockSink) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = nil
}

// packets decodes everything received so far.
func (m *mockSink) packets(t *testing.T) []protocol.Packet {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	pkts := make([]protocol.Packet, 0, len(m.payloads))
	for _, raw := range m.payloads {
		pkt, err := protocol.Decode(raw)
		require.NoError(t, err)
		pkts = append(pkts, pkt)
	}
	return pkts
}

// countType counts received packets of the given type.
func (m *mockSink) countType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, pkt := range m.packets(t) {
		if pkt.Type == typ {
			n++
		}
	}
	return n
}

// hasMessage reports whether a Message packet with the given content was
// received.
func (m *mockSink) hasMessage(t *testing.T, content string) bool {
	t.Helper()
	for _, pkt := range m.packets(t) {
		if pkt.Type != protocol.TypeMessage {
			continue
		}
		_, got, err := pkt.MessageParts()
		require.NoError(t, err)
		if got == content {
			return true
		}
	}
	return false
}

// lastError returns the code of the most recent Error packet, or -1.
func (m *mockSink) lastError(t *testing.T) int {
	t.Helper()
	code := -1
	for _, pkt := range m.packets(t) {
		if pkt.Type == protocol.TypeError {
			c, _, err := pkt.ErrorParts()
			require.NoError(t, err)
			code = c
		}
	}
	return code
}

// setupTestRoom builds a room with n registered players and a seeded
// random source.
func setupTestRoom(t *testing.T, n int) (*Room, []uuid.UUID, []*mockSink) {
	t.Helper()
	r := NewRoom()
	r.Rng = rand.New(rand.NewSource(7))

	ids := make([]uuid.UUID, n)
	sinks := make([]*mockSink, n)
	for i := 0; i < n; i++ {
		ids[i] = uuid.New()
		sinks[i] = &mockSink{}
		r.Join(ids[i], sinks[i])
		r.InitPlayer(ids[i], fmt.Sprintf("player-%d", i))
	}
	for _, s := range sinks {
		s.clear()
	}
	return r, ids, sinks
}

func TestHostAssignment(t *testing.T) {
	r := NewRoom()
	first, second := uuid.New(), uuid.New()
	firstSink, secondSink := &mockSink{}, &mockSink{}

	r.Join(first, firstSink)
	r.InitPlayer(first, "alice")
	r.Join(second, secondSink)
	r.InitPlayer(second, "bob")

	p1, ok := r.Player(first)
	require.True(t, ok)
	p2, ok := r.Player(second)
	require.True(t, ok)

	assert.True(t, p1.IsHost, "first registered player becomes host")
	assert.False(t, p2.IsHost, "later joiners never become host while the first remains")
	assert.True(t, firstSink.hasMessage(t, "You are the host"))
	assert.False(t, secondSink.hasMessage(t, "You are the host"))
}

func TestJoinIsIdempotent(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1)
	r.Join(ids[0], &mockSink{})
	assert.Equal(t, 1, r.PlayerCount())
}

func TestInitPlayerSnapshotAndConnect(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)

	third := uuid.New()
	thirdSink := &mockSink{}
	r.Join(third, thirdSink)
	r.InitPlayer(third, "carol")

	// The joiner gets the roster snapshot including themself.
	pkts := thirdSink.packets(t)
	require.NotEmpty(t, pkts)
	assert.Equal(t, protocol.TypeGameData, pkts[0].Type)
	selfID, selfName, roster, err := pkts[0].GameDataParts()
	require.NoError(t, err)
	assert.Equal(t, third, selfID)
	assert.Equal(t, "carol", selfName)
	require.Len(t, roster, 3)
	assert.Equal(t, ids[0], roster[0].ID, "roster is in join order")

	// Everyone else gets a Connect notice; the joiner does not.
	assert.Equal(t, 1, sinks[0].countType(t, protocol.TypeConnect))
	assert.Equal(t, 1, sinks[1].countType(t, protocol.TypeConnect))
	assert.Equal(t, 0, thirdSink.countType(t, protocol.TypeConnect))
}

func TestHostStartDealsHands(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 3)

	r.HandleStart(ids[0])

	r.Mu.Lock()
	require.True(t, r.Active)
	require.Len(t, r.Discard, 1)
	top := r.Discard[0]
	deckLen := len(r.Deck)
	r.Mu.Unlock()

	assert.False(t, isActionKind(top.Kind), "start card must be a plain number card")
	assert.False(t, top.HasOwner(), "start card has no owner")
	assert.Equal(t, 120-1-3*8, deckLen)

	for _, id := range ids {
		p, ok := r.Player(id)
		require.True(t, ok)
		assert.Len(t, p.Hand, 8)
	}

	assert.Equal(t, ids[0], r.CurrentTurn(), "first joiner opens the game")
	for _, s := range sinks {
		assert.True(t, s.hasMessage(t, "The host has started the game"))
	}
}

func TestStartIsHostOnly(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)

	r.HandleStart(ids[1])

	assert.Equal(t, protocol.CodeHostOnly, sinks[1].lastError(t))
	r.Mu.Lock()
	assert.False(t, r.Active)
	r.Mu.Unlock()
}

func TestStartWhileActiveRejected(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)
	r.HandleStart(ids[0])
	sinks[0].clear()

	r.HandleStart(ids[0])
	assert.Equal(t, protocol.CodeGameState, sinks[0].lastError(t))
}

func TestPlayCardRejectsIllegal(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Discard = []Card{{Kind: Five, Color: Red}}
	p := r.players[ids[0]]
	p.Hand = []Card{{Kind: Nine, Color: Blue}}
	handBefore := append([]Card(nil), p.Hand...)
	r.Mu.Unlock()
	sinks[0].clear()

	r.HandlePlayCard(ids[0], Nine, Blue)

	assert.Equal(t, protocol.CodeIllegalCard, sinks[0].lastError(t))
	r.Mu.Lock()
	assert.Equal(t, handBefore, r.players[ids[0]].Hand, "illegal plays must not mutate the hand")
	assert.Len(t, r.Discard, 1)
	r.Mu.Unlock()
}

func TestPlayCardWrongTurn(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)
	r.HandleStart(ids[0])
	sinks[1].clear()

	r.HandlePlayCard(ids[1], Five, Red)
	assert.Equal(t, protocol.CodeNotYourTurn, sinks[1].lastError(t))
}

func TestPlayCardPlacesAndChains(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Discard = []Card{{Kind: Five, Color: Red}}
	r.players[ids[0]].Hand = []Card{
		{Kind: Five, Color: Blue},
		{Kind: Five, Color: Green},
		{Kind: Nine, Color: Green},
	}
	r.Mu.Unlock()

	r.HandlePlayCard(ids[0], Five, Blue)

	r.Mu.Lock()
	require.Len(t, r.Discard, 2)
	assert.Equal(t, Kind(Five), r.Discard[0].Kind)
	assert.Equal(t, ids[0], r.Discard[0].Owner, "placed card records its placer")
	r.Mu.Unlock()

	// Self-chain: the same kind may follow, a color match may not.
	r.HandlePlayCard(ids[0], Nine, Green)
	r.Mu.Lock()
	assert.Len(t, r.Discard, 2, "color match is not legal on one's own placement")
	r.Mu.Unlock()

	r.HandlePlayCard(ids[0], Five, Green)
	r.Mu.Lock()
	assert.Len(t, r.Discard, 3)
	r.Mu.Unlock()
}

func TestDrawRecordsAndNotifies(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)
	r.HandleStart(ids[0])
	for _, s := range sinks {
		s.clear()
	}

	r.HandleDraw(ids[0])

	p, ok := r.Player(ids[0])
	require.True(t, ok)
	assert.Len(t, p.Hand, 9)
	assert.True(t, sinks[1].hasMessage(t, "player-0 drew a card"))
	assert.False(t, sinks[0].hasMessage(t, "player-0 drew a card"))
}

func TestDrawReshufflesDiscard(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Deck = []Card{}
	r.Discard = []Card{
		{Kind: Five, Color: Red, Owner: ids[1]},
		{Kind: Nine, Color: Blue, Owner: ids[0]},
		{Kind: Two, Color: Green, Owner: ids[1]},
	}
	r.Mu.Unlock()

	r.HandleDraw(ids[0])

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Len(t, r.Discard, 1, "only the top card stays on the pile")
	assert.Len(t, r.Deck, 1, "two recycled, one drawn")
	for _, c := range r.Deck {
		assert.Equal(t, uuid.Nil, c.Owner, "recycled cards lose their owner")
	}
}

func TestEndTurnGate(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)
	r.HandleStart(ids[0])

	r.HandleEndTurn(ids[0])
	assert.Equal(t, protocol.CodeTurnNotOver, sinks[0].lastError(t))
	assert.Equal(t, ids[0], r.CurrentTurn())

	r.HandleDraw(ids[0])
	r.HandleDraw(ids[0])
	r.HandleEndTurn(ids[0])
	assert.Equal(t, ids[0], r.CurrentTurn(), "two draws do not meet the budget")

	r.HandleDraw(ids[0])
	r.HandleEndTurn(ids[0])
	assert.Equal(t, ids[1], r.CurrentTurn(), "three draws end the turn")
}

func TestReverseFlipsRotation(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 3)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Discard = []Card{{Kind: Five, Color: Red}}
	r.players[ids[0]].Hand = []Card{{Kind: Reverse, Color: Red}, {Kind: Zero, Color: Red}}
	r.Mu.Unlock()

	r.HandlePlayCard(ids[0], Reverse, Red)
	r.HandleEndTurn(ids[0])

	assert.Equal(t, ids[2], r.CurrentTurn(), "Reverse sends the turn the other way")
}

func TestBlockSkipsNextPlayer(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 3)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Discard = []Card{{Kind: Five, Color: Red}}
	r.players[ids[0]].Hand = []Card{{Kind: Block, Color: Red}, {Kind: Zero, Color: Red}}
	r.Mu.Unlock()

	r.HandlePlayCard(ids[0], Block, Red)
	r.HandleEndTurn(ids[0])

	assert.Equal(t, ids[2], r.CurrentTurn(), "Block skips one seat")
}

func TestWinOnEmptyHand(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 3)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.Discard = []Card{{Kind: Five, Color: Red}}
	r.players[ids[0]].Hand = []Card{{Kind: Five, Color: Blue}}
	r.players[ids[1]].Hand = r.players[ids[1]].Hand[:3]
	r.players[ids[2]].Hand = r.players[ids[2]].Hand[:5]
	r.Mu.Unlock()
	for _, s := range sinks {
		s.clear()
	}

	r.HandlePlayCard(ids[0], Five, Blue)

	r.Mu.Lock()
	assert.False(t, r.Active)
	r.Mu.Unlock()

	for _, s := range sinks {
		require.Equal(t, 1, s.countType(t, protocol.TypeWinUpdate))
	}
	var win protocol.Packet
	for _, pkt := range sinks[1].packets(t) {
		if pkt.Type == protocol.TypeWinUpdate {
			win = pkt
		}
	}
	winnerID, winnerName, others, stats, err := win.WinUpdateParts()
	require.NoError(t, err)
	assert.Equal(t, ids[0], winnerID)
	assert.Equal(t, "player-0", winnerName)
	assert.Equal(t, []string{"player-1", "player-2"}, others, "placements rank by ascending hand size")
	assert.Equal(t, 3, stats.PlayerCount)
}

func TestPlacementTieBreaksByJoinOrder(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 3)
	r.HandleStart(ids[0])

	r.Mu.Lock()
	r.players[ids[0]].Hand = r.players[ids[0]].Hand[:2]
	r.players[ids[1]].Hand = r.players[ids[1]].Hand[:2]
	r.players[ids[2]].Hand = r.players[ids[2]].Hand[:2]
	r.Mu.Unlock()
	for _, s := range sinks {
		s.clear()
	}

	r.End()

	var win protocol.Packet
	for _, pkt := range sinks[0].packets(t) {
		if pkt.Type == protocol.TypeWinUpdate {
			win = pkt
		}
	}
	winnerID, _, others, _, err := win.WinUpdateParts()
	require.NoError(t, err)
	assert.Equal(t, ids[0], winnerID, "equal hands rank by join order")
	assert.Equal(t, []string{"player-1", "player-2"}, others)
}

func TestForcedLeaveEndsGameOnce(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 3)
	r.HandleStart(ids[0])
	for _, s := range sinks {
		s.clear()
	}

	r.Leave(ids[2])
	r.Leave(ids[2]) // second call is a roster no-op

	abort := "Game ended due to one of the players leaving"
	assert.True(t, sinks[0].hasMessage(t, abort))
	assert.True(t, sinks[1].hasMessage(t, abort))

	r.Mu.Lock()
	assert.False(t, r.Active)
	r.Mu.Unlock()

	assert.Equal(t, 1, sinks[0].countType(t, protocol.TypeWinUpdate), "no double end on repeated leave")
	assert.Equal(t, 1, sinks[0].countType(t, protocol.TypeDisconnect))
}

func TestHostLeavePromotesNextJoiner(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)

	r.Leave(ids[0])

	p, ok := r.Player(ids[1])
	require.True(t, ok)
	assert.True(t, p.IsHost)
	assert.True(t, sinks[1].hasMessage(t, "You are the host"))
}

func TestLeaveLastPlayerTriggersOnEmpty(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 1)
	var gotID uuid.UUID
	r.OnEmpty = func(id uuid.UUID) { gotID = id }

	r.Leave(ids[0])

	assert.Equal(t, r.ID, gotID)
}

func TestRoomReuseAfterEnd(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	r.HandleStart(ids[0])
	r.End()

	r.Mu.Lock()
	assert.False(t, r.Active)
	r.Mu.Unlock()

	r.HandleStart(ids[0])

	r.Mu.Lock()
	assert.True(t, r.Active)
	r.Mu.Unlock()
	for _, id := range ids {
		p, ok := r.Player(id)
		require.True(t, ok)
		assert.Len(t, p.Hand, 8, "a reused room deals fresh hands")
	}
	assert.Equal(t, ids[0], r.CurrentTurn())
}

func TestEmitUnknownPlayerIsNoop(t *testing.T) {
	r, _, _ := setupTestRoom(t, 1)
	r.Emit(uuid.New(), protocol.ServerMessage("hello"))
	r.Leave(uuid.New())
}

func TestChatRelay(t *testing.T) {
	r, ids, sinks := setupTestRoom(t, 2)

	r.HandleChat(ids[1], "good luck")

	for _, s := range sinks {
		found := false
		for _, pkt := range s.packets(t) {
			if pkt.Type != protocol.TypeMessage {
				continue
			}
			sender, content, err := pkt.MessageParts()
			require.NoError(t, err)
			if sender == "player-1" && content == "good luck" {
				found = true
			}
		}
		assert.True(t, found)
	}
}
