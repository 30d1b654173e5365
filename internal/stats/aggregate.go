package stats

// PlayerAggregateStat is the cross-game merge of a player's per-game
// stats.
type PlayerAggregateStat struct {
	Name         string
	GamesPlayed  int
	Guesses      int
	ShotsPlayed  int
	Correct      int
	SkipVotes    int
	Aces         int
	MaxStreak    int
	AvgReaction  float64
	AvgPrecision float64
}

// AggregateOf lifts a single game's stats into an aggregate of one game.
func AggregateOf(stat PlayerGameStat) PlayerAggregateStat {
	return PlayerAggregateStat{
		Name:         stat.Name,
		GamesPlayed:  1,
		Guesses:      stat.Guesses,
		ShotsPlayed:  stat.ShotsPlayed,
		Correct:      stat.Correct,
		SkipVotes:    stat.SkipVotes,
		Aces:         stat.Aces,
		MaxStreak:    stat.MaxStreak,
		AvgReaction:  stat.AvgReaction,
		AvgPrecision: stat.AvgPrecision,
	}
}

// Merge combines two aggregates: counts are summed, the max streak is the
// larger of the two, and the averages are recomputed as weighted averages
// (reaction time weighted by shots played, precision by correct guesses).
// A zero weight sum yields 0.
func (a PlayerAggregateStat) Merge(b PlayerAggregateStat) PlayerAggregateStat {
	merged := PlayerAggregateStat{
		Name:        a.Name,
		GamesPlayed: a.GamesPlayed + b.GamesPlayed,
		Guesses:     a.Guesses + b.Guesses,
		ShotsPlayed: a.ShotsPlayed + b.ShotsPlayed,
		Correct:     a.Correct + b.Correct,
		SkipVotes:   a.SkipVotes + b.SkipVotes,
		Aces:        a.Aces + b.Aces,
		MaxStreak:   a.MaxStreak,
	}
	if merged.Name == "" {
		merged.Name = b.Name
	}
	if b.MaxStreak > merged.MaxStreak {
		merged.MaxStreak = b.MaxStreak
	}
	merged.AvgReaction = weightedAverage(a.AvgReaction, a.ShotsPlayed, b.AvgReaction, b.ShotsPlayed)
	merged.AvgPrecision = weightedAverage(a.AvgPrecision, a.Correct, b.AvgPrecision, b.Correct)
	return merged
}

func weightedAverage(a float64, aWeight int, b float64, bWeight int) float64 {
	total := aWeight + bWeight
	if total == 0 {
		return 0
	}
	return (a*float64(aWeight) + b*float64(bWeight)) / float64(total)
}
