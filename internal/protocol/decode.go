// internal/protocol/decode.go
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Client-side frame builders for the inbound variants.

// Register builds a registration frame carrying the desired username.
func Register(username string) []byte {
	return encode(TypeRegister, username)
}

// Start builds a start-request frame.
func Start() []byte {
	return encodeEmpty(TypeStart)
}

// PlayCard builds a play-card frame.
func PlayCard(card CardData) []byte {
	return encode(TypePlayCard, card)
}

// Draw builds a draw-request frame.
func Draw() []byte {
	return encodeEmpty(TypeDraw)
}

// EndTurn builds an end-turn frame.
func EndTurn() []byte {
	return encodeEmpty(TypeEndTurn)
}

// Chat builds an outgoing chat frame carrying the bare text.
func Chat(text string) []byte {
	return encode(TypeMessage, text)
}

// encodeEmpty marshals a variant with no payload.
func encodeEmpty(typ string) []byte {
	b, err := json.Marshal(Packet{Type: typ})
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Decode helpers for the server-produced variants, used by clients and
// tests.

// MessageParts splits a Message payload into sender label and content.
func (p Packet) MessageParts() (sender, content string, err error) {
	var parts [2]string
	if err := json.Unmarshal(p.Data, &parts); err != nil {
		return "", "", fmt.Errorf("bad Message payload: %w", err)
	}
	return parts[0], parts[1], nil
}

// ErrorParts splits an Error payload into its code and body.
func (p Packet) ErrorParts() (code int, body string, err error) {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(p.Data, &raw); err != nil {
		return 0, "", fmt.Errorf("bad Error payload: %w", err)
	}
	if err := json.Unmarshal(raw[0], &code); err != nil {
		return 0, "", fmt.Errorf("bad Error code: %w", err)
	}
	if err := json.Unmarshal(raw[1], &body); err != nil {
		return 0, "", fmt.Errorf("bad Error body: %w", err)
	}
	return code, body, nil
}

// PresenceParts splits a Connect or Disconnect payload into id and
// username.
func (p Packet) PresenceParts() (id uuid.UUID, username string, err error) {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(p.Data, &raw); err != nil {
		return uuid.Nil, "", fmt.Errorf("bad presence payload: %w", err)
	}
	if err := json.Unmarshal(raw[0], &id); err != nil {
		return uuid.Nil, "", fmt.Errorf("bad presence id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &username); err != nil {
		return uuid.Nil, "", fmt.Errorf("bad presence username: %w", err)
	}
	return id, username, nil
}

// GameDataParts splits a GameData payload into the receiver's identity
// and the full roster.
func (p Packet) GameDataParts() (selfID uuid.UUID, selfUsername string, roster []PlayerInfo, err error) {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(p.Data, &raw); err != nil {
		return uuid.Nil, "", nil, fmt.Errorf("bad GameData payload: %w", err)
	}
	if err := json.Unmarshal(raw[0], &selfID); err != nil {
		return uuid.Nil, "", nil, fmt.Errorf("bad GameData id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &selfUsername); err != nil {
		return uuid.Nil, "", nil, fmt.Errorf("bad GameData username: %w", err)
	}
	if err := json.Unmarshal(raw[2], &roster); err != nil {
		return uuid.Nil, "", nil, fmt.Errorf("bad GameData roster: %w", err)
	}
	return selfID, selfUsername, roster, nil
}

// WinUpdateParts splits a WinUpdate payload into winner identity, the
// remaining players in placement order, and the statistics summary.
func (p Packet) WinUpdateParts() (winnerID uuid.UUID, winnerUsername string, others []string, stats Statistics, err error) {
	var raw [4]json.RawMessage
	if err := json.Unmarshal(p.Data, &raw); err != nil {
		return uuid.Nil, "", nil, Statistics{}, fmt.Errorf("bad WinUpdate payload: %w", err)
	}
	if err := json.Unmarshal(raw[0], &winnerID); err != nil {
		return uuid.Nil, "", nil, Statistics{}, fmt.Errorf("bad WinUpdate winner id: %w", err)
	}
	if err := json.Unmarshal(raw[1], &winnerUsername); err != nil {
		return uuid.Nil, "", nil, Statistics{}, fmt.Errorf("bad WinUpdate winner username: %w", err)
	}
	if err := json.Unmarshal(raw[2], &others); err != nil {
		return uuid.Nil, "", nil, Statistics{}, fmt.Errorf("bad WinUpdate placements: %w", err)
	}
	if err := json.Unmarshal(raw[3], &stats); err != nil {
		return uuid.Nil, "", nil, Statistics{}, fmt.Errorf("bad WinUpdate statistics: %w", err)
	}
	return winnerID, winnerUsername, others, stats, nil
}
