// internal/handlers/conn.go
package handlers

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// outChanSize bounds the per-connection send queue. A client that falls
// this far behind starts losing messages rather than stalling the room.
const outChanSize = 64

// writeTimeout caps a single WebSocket write.
const writeTimeout = 5 * time.Second

// PlayerConn is a single player's live connection. It satisfies
// game.Sink: Send queues a payload for the write pump without ever
// blocking the room.
type PlayerConn struct {
	PlayerID uuid.UUID
	OutChan  chan []byte
	Cancel   context.CancelFunc

	logger *logrus.Logger
}

// NewPlayerConn builds a connection wrapper with a buffered out-queue.
func NewPlayerConn(playerID uuid.UUID, cancel context.CancelFunc, logger *logrus.Logger) *PlayerConn {
	return &PlayerConn{
		PlayerID: playerID,
		OutChan:  make(chan []byte, outChanSize),
		Cancel:   cancel,
		logger:   logger,
	}
}

// Send pushes a payload onto the out-queue non-blockingly. Logs if the
// queue is full and the payload is dropped.
func (pc *PlayerConn) Send(data []byte) {
	select {
	case pc.OutChan <- data:
	default:
		pc.logger.Warnf("out-queue for player %s full, dropped %d byte payload", pc.PlayerID, len(data))
	}
}

// writePump drains the out-queue onto the WebSocket until the context is
// cancelled. Write failures cancel the connection; the read loop then
// observes the closure and cleans up.
func (pc *PlayerConn) writePump(ctx context.Context, c *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-pc.OutChan:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				pc.logger.Warnf("write to player %s failed: %v", pc.PlayerID, err)
				pc.Cancel()
				return
			}
		}
	}
}
