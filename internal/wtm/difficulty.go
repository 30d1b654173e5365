package wtm

import (
	"errors"
	"fmt"
)

// ErrUnknownDifficulty means a user-supplied difficulty value is not one
// of the accepted ones.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty selects the shot pool used by whatthemovie.com. All is only
// meaningful as a query filter for past games, never for starting one.
type Difficulty string

const (
	DifficultyEasy   = Difficulty("easy")
	DifficultyMedium = Difficulty("medium")
	DifficultyHard   = Difficulty("hard")
	DifficultyAll    = Difficulty("all")
)

// Difficulties lists the values accepted when starting a game.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty validates a user-supplied difficulty argument.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAll:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownDifficulty, s)
}
