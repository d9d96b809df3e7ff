// internal/protocol/packet.go
package protocol

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Packet is the tagged union used on the wire in both directions.
// The discriminator lives in "type"; "data" carries the variant's
// positional payload: single-value variants hold the bare value,
// multi-value variants hold a JSON array.
type Packet struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Variant names. Register through EndTurn arrive from clients; the rest
// are produced by the room.
const (
	TypeRegister   = "Register"
	TypeStart      = "Start"
	TypePlayCard   = "PlayCard"
	TypeDraw       = "Draw"
	TypeEndTurn    = "EndTurn"
	TypeGameData   = "GameData"
	TypeConnect    = "Connect"
	TypeDisconnect = "Disconnect"
	TypeMessage    = "Message"
	TypeError      = "Error"
	TypeWinUpdate  = "WinUpdate"
)

// ServerSender is the label used for messages originating from the room
// itself rather than a player.
const ServerSender = "Server"

// PlayerInfo is one roster entry inside a GameData payload. It encodes
// positionally as [id, username].
type PlayerInfo struct {
	ID       uuid.UUID
	Username string
}

// MarshalJSON encodes the entry as a two-element array.
func (p PlayerInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.ID, p.Username})
}

// UnmarshalJSON decodes the two-element array form.
func (p *PlayerInfo) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ID); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Username)
}

// CardData is the card shape clients send in a PlayCard packet. The kind
// key is "type" to match the card's serialized form.
type CardData struct {
	Kind  string `json:"type"`
	Color string `json:"color"`
}

// Statistics is the aggregate summary attached to a WinUpdate.
type Statistics struct {
	DurationSecs int64 `json:"duration_secs"`
	PlayerCount  int   `json:"player_count"`
}

// Decode parses a raw client frame into a Packet.
func Decode(data []byte) (Packet, error) {
	var p Packet
	if err := json.Unmarshal(data, &p); err != nil {
		return Packet{}, fmt.Errorf("malformed packet: %w", err)
	}
	if p.Type == "" {
		return Packet{}, fmt.Errorf("packet missing type discriminator")
	}
	return p, nil
}

// RegisterData extracts the username from a Register packet.
func (p Packet) RegisterData() (string, error) {
	var username string
	if err := json.Unmarshal(p.Data, &username); err != nil {
		return "", fmt.Errorf("bad Register payload: %w", err)
	}
	return username, nil
}

// PlayCardData extracts the card from a PlayCard packet.
func (p Packet) PlayCardData() (CardData, error) {
	var c CardData
	if err := json.Unmarshal(p.Data, &c); err != nil {
		return CardData{}, fmt.Errorf("bad PlayCard payload: %w", err)
	}
	if c.Kind == "" || c.Color == "" {
		return CardData{}, fmt.Errorf("PlayCard payload missing type or color")
	}
	return c, nil
}

// MessageData extracts the text of an inbound chat Message packet.
// Clients send the bare content string; the room attaches the sender
// label when it rebroadcasts.
func (p Packet) MessageData() (string, error) {
	var text string
	if err := json.Unmarshal(p.Data, &text); err != nil {
		return "", fmt.Errorf("bad Message payload: %w", err)
	}
	return text, nil
}

// encode marshals a variant into wire bytes. Logs a warning and returns
// empty JSON on marshalling error so callers can stay fire-and-forget.
func encode(typ string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("WARNING: failed to marshal %s payload: %v", typ, err)
		return []byte("{}")
	}
	b, err := json.Marshal(Packet{Type: typ, Data: raw})
	if err != nil {
		log.Printf("WARNING: failed to marshal %s packet: %v", typ, err)
		return []byte("{}")
	}
	return b
}

// Message builds a chat or server text message.
func Message(sender, content string) []byte {
	return encode(TypeMessage, [2]string{sender, content})
}

// ServerMessage builds a Message attributed to the server.
func ServerMessage(content string) []byte {
	return Message(ServerSender, content)
}

// Error builds an error payload with a numeric code and human text.
func Error(code int, body string) []byte {
	return encode(TypeError, [2]interface{}{code, body})
}

// Connect announces a player joining.
func Connect(id uuid.UUID, username string) []byte {
	return encode(TypeConnect, [2]interface{}{id, username})
}

// Disconnect announces a player leaving.
func Disconnect(id uuid.UUID, username string) []byte {
	return encode(TypeDisconnect, [2]interface{}{id, username})
}

// GameData builds the roster snapshot sent to a registering client.
func GameData(selfID uuid.UUID, selfUsername string, roster []PlayerInfo) []byte {
	return encode(TypeGameData, [3]interface{}{selfID, selfUsername, roster})
}

// WinUpdate builds the end-of-game summary: winner, remaining players in
// placement order, and aggregate statistics.
func WinUpdate(winnerID uuid.UUID, winnerUsername string, others []string, stats Statistics) []byte {
	if others == nil {
		others = []string{}
	}
	return encode(TypeWinUpdate, [4]interface{}{winnerID, winnerUsername, others, stats})
}
