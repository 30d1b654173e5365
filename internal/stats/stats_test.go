package stats

import (
	"math"
	"testing"
)

func float(v float64) *float64 {
	return &v
}

func TestRecorder_CorrectGuess(t *testing.T) {
	r := NewRecorder()
	r.RecordGuess("p1", "Alice", Guess{
		Correct:   true,
		Ace:       true,
		Reaction:  float(2.5),
		Streak:    1,
		Precision: float(0.95),
	})

	stat := r.Snapshot()["p1"]
	if stat.Guesses != 1 {
		t.Errorf("Guesses = %d, want 1", stat.Guesses)
	}
	if stat.Correct != 1 {
		t.Errorf("Correct = %d, want 1", stat.Correct)
	}
	if stat.Aces != 1 {
		t.Errorf("Aces = %d, want 1", stat.Aces)
	}
	if stat.ShotsPlayed != 1 {
		t.Errorf("ShotsPlayed = %d, want 1", stat.ShotsPlayed)
	}
	if stat.MaxStreak != 1 {
		t.Errorf("MaxStreak = %d, want 1", stat.MaxStreak)
	}
	if stat.AvgReaction != 2.5 {
		t.Errorf("AvgReaction = %v, want 2.5", stat.AvgReaction)
	}
	if stat.AvgPrecision != 0.95 {
		t.Errorf("AvgPrecision = %v, want 0.95", stat.AvgPrecision)
	}
}

func TestRecorder_RunningAverages(t *testing.T) {
	r := NewRecorder()
	r.RecordGuess("p1", "Alice", Guess{Correct: true, Reaction: float(2), Streak: 1, Precision: float(0.8)})
	r.RecordGuess("p1", "Alice", Guess{Correct: true, Reaction: float(4), Streak: 2, Precision: float(1.0)})

	stat := r.Snapshot()["p1"]
	if stat.AvgReaction != 3 {
		t.Errorf("AvgReaction = %v, want 3", stat.AvgReaction)
	}
	if math.Abs(stat.AvgPrecision-0.9) > 1e-9 {
		t.Errorf("AvgPrecision = %v, want 0.9", stat.AvgPrecision)
	}
	if stat.MaxStreak != 2 {
		t.Errorf("MaxStreak = %d, want 2", stat.MaxStreak)
	}
}

func TestRecorder_IncorrectGuessOnlyCountsReactionOnFirstGuess(t *testing.T) {
	r := NewRecorder()
	r.RecordGuess("p1", "Alice", Guess{Reaction: float(5)})
	r.RecordGuess("p1", "Alice", Guess{}) // second guess of the same shot

	stat := r.Snapshot()["p1"]
	if stat.Guesses != 2 {
		t.Errorf("Guesses = %d, want 2", stat.Guesses)
	}
	if stat.ShotsPlayed != 1 {
		t.Errorf("ShotsPlayed = %d, want 1", stat.ShotsPlayed)
	}
	if stat.Correct != 0 {
		t.Errorf("Correct = %d, want 0", stat.Correct)
	}
	if stat.AvgReaction != 5 {
		t.Errorf("AvgReaction = %v, want 5", stat.AvgReaction)
	}
}

func TestRecorder_Skips(t *testing.T) {
	r := NewRecorder()
	r.RecordSkip("p1", "Alice")
	r.RecordSkip("p1", "Alice")

	if got := r.Snapshot()["p1"].SkipVotes; got != 2 {
		t.Errorf("SkipVotes = %d, want 2", got)
	}
}

func TestMerge_WithSelfDoublesCountsKeepsAverages(t *testing.T) {
	stat := PlayerGameStat{
		Name:         "Alice",
		Guesses:      7,
		ShotsPlayed:  5,
		Correct:      4,
		SkipVotes:    1,
		Aces:         2,
		MaxStreak:    3,
		AvgReaction:  4.2,
		AvgPrecision: 0.91,
	}

	merged := AggregateOf(stat).Merge(AggregateOf(stat))

	if merged.GamesPlayed != 2 {
		t.Errorf("GamesPlayed = %d, want 2", merged.GamesPlayed)
	}
	if merged.Guesses != 14 {
		t.Errorf("Guesses = %d, want 14", merged.Guesses)
	}
	if merged.Correct != 8 {
		t.Errorf("Correct = %d, want 8", merged.Correct)
	}
	if merged.SkipVotes != 2 {
		t.Errorf("SkipVotes = %d, want 2", merged.SkipVotes)
	}
	if merged.MaxStreak != 3 {
		t.Errorf("MaxStreak = %d, want 3", merged.MaxStreak)
	}
	if merged.AvgReaction != 4.2 {
		t.Errorf("AvgReaction = %v, want 4.2", merged.AvgReaction)
	}
	if merged.AvgPrecision != 0.91 {
		t.Errorf("AvgPrecision = %v, want 0.91", merged.AvgPrecision)
	}
}

func TestMerge_ZeroWeightsYieldZeroAverages(t *testing.T) {
	a := PlayerAggregateStat{GamesPlayed: 1}
	b := PlayerAggregateStat{GamesPlayed: 1}

	merged := a.Merge(b)
	if merged.AvgReaction != 0 {
		t.Errorf("AvgReaction = %v, want 0", merged.AvgReaction)
	}
	if merged.AvgPrecision != 0 {
		t.Errorf("AvgPrecision = %v, want 0", merged.AvgPrecision)
	}
}

func TestMerge_WeightedAverages(t *testing.T) {
	a := PlayerAggregateStat{GamesPlayed: 1, ShotsPlayed: 1, Correct: 1, AvgReaction: 2, AvgPrecision: 1}
	b := PlayerAggregateStat{GamesPlayed: 1, ShotsPlayed: 3, Correct: 3, AvgReaction: 6, AvgPrecision: 0.8}

	merged := a.Merge(b)
	if merged.AvgReaction != 5 {
		t.Errorf("AvgReaction = %v, want 5", merged.AvgReaction)
	}
	if math.Abs(merged.AvgPrecision-0.85) > 1e-9 {
		t.Errorf("AvgPrecision = %v, want 0.85", merged.AvgPrecision)
	}
}
