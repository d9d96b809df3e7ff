// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tmatias/uno/internal/game"
	"github.com/tmatias/uno/internal/protocol"
)

// RoomWSHandler upgrades the HTTP connection to a WebSocket bound to a
// specific room. It resolves the guest identity, joins the room, starts
// the write pump, and then reads client packets until the connection
// drops, at which point the player leaves the room.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Path: /room/ws/{room_id}
		idStr := strings.TrimPrefix(r.URL.Path, "/room/ws/")
		if i := strings.Index(idStr, "/"); i != -1 {
			idStr = idStr[:i]
		}
		roomID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "Invalid room_id format", http.StatusBadRequest)
			return
		}
		room, ok := rs.Rooms.GetRoom(roomID)
		if !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		// Resolve identity before the upgrade so the session cookie lands
		// in the handshake response.
		playerID, err := EnsureGuest(w, r)
		if err != nil {
			logger.Warnf("guest session failed for room %s: %v", roomID, err)
			http.Error(w, "Session failure", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "uno" {
			c.Close(BadSubprotocolError, "client must use the 'uno' subprotocol")
			return
		}
		logger.Infof("player %s connected to room %s from %s", playerID, roomID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		pc := NewPlayerConn(playerID, cancel, logger)
		go pc.writePump(ctx, c)

		room.Join(playerID, pc)

		readPackets(ctx, c, room, playerID, pc, logger)

		room.Leave(playerID)
		logger.Infof("player %s left room %s", playerID, roomID)
		c.Close(websocket.StatusNormalClosure, "bye")
	}
}

// readPackets consumes client frames and routes them into the room until
// the connection closes or the context is cancelled.
func readPackets(ctx context.Context, c *websocket.Conn, room *game.Room, playerID uuid.UUID, pc *PlayerConn, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for player %s", playerID)
			} else if ctx.Err() != nil {
				logger.Infof("websocket context cancelled for player %s", playerID)
			} else {
				logger.Warnf("websocket read error for player %s: %v", playerID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		pkt, err := protocol.Decode(data)
		if err != nil {
			logger.Warnf("bad frame from player %s: %v", playerID, err)
			pc.Send(protocol.Error(protocol.CodeBadPacket, "malformed packet"))
			continue
		}

		switch pkt.Type {
		case protocol.TypeRegister:
			username, err := pkt.RegisterData()
			if err != nil || strings.TrimSpace(username) == "" {
				pc.Send(protocol.Error(protocol.CodeBadPacket, "Register requires a username"))
				continue
			}
			room.InitPlayer(playerID, strings.TrimSpace(username))

		case protocol.TypeStart:
			room.HandleStart(playerID)

		case protocol.TypePlayCard:
			card, err := pkt.PlayCardData()
			if err != nil {
				pc.Send(protocol.Error(protocol.CodeBadPacket, "PlayCard requires a card"))
				continue
			}
			room.HandlePlayCard(playerID, game.Kind(card.Kind), game.Color(card.Color))

		case protocol.TypeDraw:
			room.HandleDraw(playerID)

		case protocol.TypeEndTurn:
			room.HandleEndTurn(playerID)

		case protocol.TypeMessage:
			text, err := pkt.MessageData()
			if err != nil {
				pc.Send(protocol.Error(protocol.CodeBadPacket, "Message requires text"))
				continue
			}
			room.HandleChat(playerID, text)

		default:
			logger.Warnf("unknown packet type %q from player %s", pkt.Type, playerID)
			pc.Send(protocol.Error(protocol.CodeBadPacket, "unknown packet type: "+pkt.Type))
		}
	}
}
