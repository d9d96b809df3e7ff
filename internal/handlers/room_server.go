// internal/handlers/room_server.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tmatias/uno/internal/game"
)

// RoomServer owns the process-wide room registry and hands rooms to the
// HTTP and WebSocket handlers.
type RoomServer struct {
	Rooms  *game.RoomStore
	Logger *logrus.Logger
}

func NewRoomServer(logger *logrus.Logger) *RoomServer {
	return &RoomServer{
		Rooms:  game.NewRoomStore(),
		Logger: logger,
	}
}

// CreateRoomHandler creates a new waiting room and returns its id.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		room := game.NewRoom()
		room.OnEmpty = func(id uuid.UUID) {
			rs.Rooms.DeleteRoom(id)
			rs.Logger.Infof("room %s empty, removed", id)
		}
		rs.Rooms.AddRoom(room)
		rs.Logger.Infof("created room %s", room.ID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"room_id": room.ID,
		})
	}
}

// ListRoomsHandler returns the live rooms with their occupancy.
func ListRoomsHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type roomInfo struct {
			ID      string `json:"id"`
			Players int    `json:"players"`
			Active  bool   `json:"active"`
		}
		rooms := rs.Rooms.Rooms()
		infos := make([]roomInfo, 0, len(rooms))
		for _, room := range rooms {
			room.Mu.Lock()
			active := room.Active
			room.Mu.Unlock()
			infos = append(infos, roomInfo{
				ID:      room.ID.String(),
				Players: room.PlayerCount(),
				Active:  active,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"rooms": infos,
		})
	}
}
