package stats

import "sort"

const (
	// MinGamesForRanking is the number of games a player must have played
	// before appearing on the leaderboard.
	MinGamesForRanking = 10
	// LeaderboardSize caps the number of returned rows.
	LeaderboardSize = 10
)

// LeaderboardRow is one ranked line of the cross-game leaderboard.
type LeaderboardRow struct {
	Position    int
	Name        string
	GamesPlayed int
	AvgCorrect  float64
	Guesses     int
	Correct     int
	MaxStreak   int
	AvgReaction float64
}

// Leaderboard folds per-game stat maps (one map per past game, keyed by
// player identifier) into aggregates, drops players below the
// games-played threshold and ranks the rest by average correct guesses
// per game, then games played.
func Leaderboard(games []map[string]PlayerGameStat) []LeaderboardRow {
	aggregates := make(map[string]PlayerAggregateStat)
	for _, game := range games {
		for playerID, stat := range game {
			aggregates[playerID] = aggregates[playerID].Merge(AggregateOf(stat))
		}
	}

	ranked := make([]PlayerAggregateStat, 0, len(aggregates))
	for _, agg := range aggregates {
		if agg.GamesPlayed >= MinGamesForRanking {
			ranked = append(ranked, agg)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		avgA, avgB := a.avgCorrect(), b.avgCorrect()
		if avgA != avgB {
			return avgA > avgB
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.Name < b.Name
	})

	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}

	rows := make([]LeaderboardRow, len(ranked))
	for i, agg := range ranked {
		rows[i] = LeaderboardRow{
			Position:    i + 1,
			Name:        agg.Name,
			GamesPlayed: agg.GamesPlayed,
			AvgCorrect:  agg.avgCorrect(),
			Guesses:     agg.Guesses,
			Correct:     agg.Correct,
			MaxStreak:   agg.MaxStreak,
			AvgReaction: agg.AvgReaction,
		}
	}
	return rows
}

func (a PlayerAggregateStat) avgCorrect() float64 {
	if a.GamesPlayed == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.GamesPlayed)
}
