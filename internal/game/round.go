package game

import (
	"sync"
	"time"

	"github.com/sephii/wtm-bot/internal/fuzzy"
	"github.com/sephii/wtm-bot/internal/wtm"
)

// Round is the life of one shot being guessed. It is not safe for
// concurrent use on its own; the engine's lock is the single writer
// guard.
type Round struct {
	shot      *wtm.Shot
	startedAt time.Time
	guessed   map[string]struct{}
	skipVotes map[string]struct{}
}

func NewRound(shot *wtm.Shot) *Round {
	return &Round{
		shot:      shot,
		guessed:   make(map[string]struct{}),
		skipVotes: make(map[string]struct{}),
	}
}

func (r *Round) Shot() *wtm.Shot {
	return r.shot
}

// Start records the round's start instant and returns the countdown the
// engine waits on.
func (r *Round) Start(duration time.Duration) *Countdown {
	r.startedAt = time.Now()
	return newCountdown(duration)
}

// Elapsed returns the time since Start, or 0 for a round that was never
// started.
func (r *Round) Elapsed() time.Duration {
	if r.startedAt.IsZero() {
		return 0
	}
	return time.Since(r.startedAt)
}

// HasGuessed reports whether the player already guessed during this
// round.
func (r *Round) HasGuessed(playerID string) bool {
	_, ok := r.guessed[playerID]
	return ok
}

// RegisterGuess records the player in the guessed set and matches the
// guess against the shot's accepted titles. Correctness is the caller's
// call: it compares the score against fuzzy.Threshold.
func (r *Round) RegisterGuess(playerID, guess string) (fuzzy.Match, bool) {
	r.guessed[playerID] = struct{}{}
	return fuzzy.BestMatch(r.shot.AcceptedTitles(), guess)
}

// RegisterSkipVote adds the player to the skip voters. It reports whether
// the vote was new; repeat votes are absorbed by set semantics.
func (r *Round) RegisterSkipVote(playerID string) bool {
	if _, ok := r.skipVotes[playerID]; ok {
		return false
	}
	r.skipVotes[playerID] = struct{}{}
	return true
}

// HasSkipVote reports whether the player voted to skip this round.
func (r *Round) HasSkipVote(playerID string) bool {
	_, ok := r.skipVotes[playerID]
	return ok
}

// SkipVoteCount is the number of distinct skip voters.
func (r *Round) SkipVoteCount() int {
	return len(r.skipVotes)
}

// Countdown is the cancellable round timer. Cancel may race with the
// timer elapsing or with another Cancel; both are no-ops.
type Countdown struct {
	timer     *time.Timer
	cancelled chan struct{}
	once      sync.Once
}

func newCountdown(duration time.Duration) *Countdown {
	return &Countdown{
		timer:     time.NewTimer(duration),
		cancelled: make(chan struct{}),
	}
}

// Elapsed fires when the countdown runs out naturally.
func (c *Countdown) Elapsed() <-chan time.Time {
	return c.timer.C
}

// Cancelled fires when Cancel was called.
func (c *Countdown) Cancelled() <-chan struct{} {
	return c.cancelled
}

// Cancel stops the countdown. Idempotent, and harmless on an already
// elapsed timer.
func (c *Countdown) Cancel() {
	c.once.Do(func() {
		c.timer.Stop()
		close(c.cancelled)
	})
}
