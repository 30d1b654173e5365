package store

import (
	"time"

	"github.com/sephii/wtm-bot/internal/stats"
	"github.com/sephii/wtm-bot/internal/wtm"
)

// GameRecord is the immutable snapshot of one finished game, persisted
// per channel.
type GameRecord struct {
	Difficulty wtm.Difficulty                  `json:"difficulty"`
	StartedAt  time.Time                       `json:"started_at"`
	Players    map[string]stats.PlayerGameStat `json:"players"`
}

// Store keeps per-channel sequences of game records.
type Store interface {
	// Append adds a finished game to the channel's history.
	Append(channelID string, record GameRecord) error
	// Load returns the channel's history, filtered by difficulty.
	// DifficultyAll means unfiltered. A channel with no history yields an
	// empty slice, not an error.
	Load(channelID string, difficulty wtm.Difficulty) ([]GameRecord, error)
	Close() error
}

// filterByDifficulty keeps the records matching the wanted difficulty.
func filterByDifficulty(records []GameRecord, difficulty wtm.Difficulty) []GameRecord {
	if difficulty == wtm.DifficultyAll {
		return records
	}
	filtered := records[:0:0]
	for _, record := range records {
		if record.Difficulty == difficulty {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
