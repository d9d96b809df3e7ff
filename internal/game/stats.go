// internal/game/stats.go
package game

import (
	"time"

	"github.com/tmatias/uno/internal/protocol"
)

// Statistics tracks aggregate information about a single game for the
// end-of-game summary.
type Statistics struct {
	StartedAt   time.Time
	EndedAt     time.Time
	PlayerCount int
}

// GameStarted stamps the start time and roster size.
func (s *Statistics) GameStarted(playerCount int) {
	s.StartedAt = time.Now()
	s.EndedAt = time.Time{}
	s.PlayerCount = playerCount
}

// GameEnded stamps the end time and the roster size at game end.
func (s *Statistics) GameEnded(playerCount int) {
	s.EndedAt = time.Now()
	s.PlayerCount = playerCount
}

// Duration returns the elapsed game time, or 0 if the game never started.
func (s Statistics) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Wire converts the statistics into their wire form.
func (s Statistics) Wire() protocol.Statistics {
	return protocol.Statistics{
		DurationSecs: int64(s.Duration().Seconds()),
		PlayerCount:  s.PlayerCount,
	}
}
