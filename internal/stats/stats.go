package stats

import "sync"

// PlayerGameStat accumulates one player's numbers within a single game.
// Averages are maintained incrementally; AvgReaction only covers shots
// where the player produced a first guess, AvgPrecision only covers
// correct guesses.
type PlayerGameStat struct {
	Name         string  `json:"name"`
	Guesses      int     `json:"guesses"`
	ShotsPlayed  int     `json:"shots_played"`
	Correct      int     `json:"correct"`
	SkipVotes    int     `json:"skip_votes"`
	Aces         int     `json:"aces"`
	MaxStreak    int     `json:"max_streak"`
	AvgReaction  float64 `json:"avg_reaction"`
	AvgPrecision float64 `json:"avg_precision"`
}

// Guess carries everything the recorder needs about one guess. Reaction
// is nil unless this was the player's first guess of the shot; Precision
// is nil unless the guess was correct.
type Guess struct {
	Correct   bool
	Ace       bool
	Reaction  *float64
	Streak    int
	Precision *float64
}

// Recorder tracks per-player stats for one running game.
type Recorder struct {
	mu      sync.Mutex
	players map[string]*PlayerGameStat
}

func NewRecorder() *Recorder {
	return &Recorder{players: make(map[string]*PlayerGameStat)}
}

func (r *Recorder) get(playerID, name string) *PlayerGameStat {
	stat, ok := r.players[playerID]
	if !ok {
		stat = &PlayerGameStat{}
		r.players[playerID] = stat
	}
	stat.Name = name
	return stat
}

// RecordGuess folds one guess into the player's running stats.
func (r *Recorder) RecordGuess(playerID, name string, guess Guess) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stat := r.get(playerID, name)
	stat.Guesses++

	if guess.Reaction != nil {
		stat.AvgReaction = runningAverage(stat.AvgReaction, stat.ShotsPlayed, *guess.Reaction)
		stat.ShotsPlayed++
	}

	if !guess.Correct {
		return
	}
	if guess.Precision != nil {
		stat.AvgPrecision = runningAverage(stat.AvgPrecision, stat.Correct, *guess.Precision)
	}
	stat.Correct++
	if guess.Ace {
		stat.Aces++
	}
	if guess.Streak > stat.MaxStreak {
		stat.MaxStreak = guess.Streak
	}
}

// RecordSkip counts one skip vote for the player.
func (r *Recorder) RecordSkip(playerID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(playerID, name).SkipVotes++
}

// Snapshot returns an immutable copy of every player's stats, suitable
// for persisting at game end.
func (r *Recorder) Snapshot() map[string]PlayerGameStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]PlayerGameStat, len(r.players))
	for id, stat := range r.players {
		snapshot[id] = *stat
	}
	return snapshot
}

// runningAverage folds value into an average currently covering count
// samples.
func runningAverage(current float64, count int, value float64) float64 {
	return (current*float64(count) + value) / float64(count+1)
}
