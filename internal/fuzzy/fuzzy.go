package fuzzy

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Threshold is the minimum similarity score for a guess to count as correct.
const Threshold = 0.8

// Match is the best candidate found for a guess.
type Match struct {
	Title string
	Score float64
}

// literalOverrides maps a substring of the accepted title to a guess
// substring that is always treated as a perfect match. whatthemovie.com
// lists a few franchises under joke names, so the serious guess would
// otherwise score below the threshold.
var literalOverrides = map[string]string{
	"harry potter":  "harry fucking potter",
	"indiana jones": "indiana fucking jones",
}

// BestMatch scores guess against every candidate title and returns the
// highest-scoring one. The second return value is false when candidates
// is empty.
func BestMatch(candidates []string, guess string) (Match, bool) {
	guess = strings.ToLower(guess)

	var best Match
	found := false
	for _, candidate := range candidates {
		score := score(strings.ToLower(candidate), guess)
		if !found || score > best.Score {
			best = Match{Title: candidate, Score: score}
			found = true
		}
	}
	return best, found
}

// score compares a lower-cased candidate with a lower-cased guess.
// Titles with subtitles ("Title: Subtitle") are split on the colon and
// each segment is scored separately, alongside the full title, so a
// guess of either half is enough.
func score(candidate, guess string) float64 {
	for titlePart, guessPart := range literalOverrides {
		if strings.Contains(candidate, titlePart) && strings.Contains(guess, guessPart) {
			return 1
		}
	}

	segments := append(strings.Split(candidate, ":"), candidate)

	best := 0.0
	for _, segment := range segments {
		if r := similarity(segment, guess); r > best {
			best = r
		}
	}
	return best
}

// similarity is a character-level sequence alignment ratio, treating
// spaces and tabs as junk.
func similarity(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(chars(a), chars(b), true, func(s string) bool {
		return s == " " || s == "\t"
	})
	return m.Ratio()
}

func chars(s string) []string {
	return strings.Split(s, "")
}
