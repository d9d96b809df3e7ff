// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handlers. These give
// clients more specific closure reasons than the standard codes.
const (
	BadSubprotocolError = 3000 // client connected with an unsupported subprotocol
	InvalidSessionError = 3001 // session token was invalid or expired
	InvalidRoomIDError  = 3002 // target room id in the WS URL was malformed or unknown
)
