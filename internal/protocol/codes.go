// internal/protocol/codes.go
package protocol

// Error codes carried in Error packets. The numeric code is stable for
// clients; the accompanying text is free-form.
const (
	CodeBadPacket   = 100 // frame could not be decoded or payload malformed
	CodeGameState   = 101 // operation invalid for the room's current lifecycle state
	CodeNotYourTurn = 102 // acting player does not hold the turn
	CodeIllegalCard = 103 // card is not a legal play against the discard top
	CodeTurnNotOver = 104 // turn action budget not yet met
	CodeCannotStart = 105 // start failed (no legal start card, empty room)
	CodeHostOnly    = 106 // operation restricted to the host
)
