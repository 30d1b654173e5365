package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sephii/wtm-bot/internal/fuzzy"
	"github.com/sephii/wtm-bot/internal/stats"
	"github.com/sephii/wtm-bot/internal/wtm"
)

// Status is the engine's state machine position.
type Status string

const (
	StatusIdle              = Status("idle")
	StatusLoading           = Status("loading")
	StatusWaitingForGuesses = Status("waiting_for_guesses")
)

// MaxCombo caps the points a single correct guess can score, however
// long the underlying streak grows.
const MaxCombo = 2

// ErrNotIdle is returned when Run is called on an engine that already
// ran or is running. Engines are single-use.
var ErrNotIdle = errors.New("game is not idle")

// Combo is one player's active streak. The count keeps growing with each
// consecutive correct guess; only the applied points are capped.
type Combo struct {
	PlayerID string
	Count    int
}

// ShotSource produces the shots a game is played with.
type ShotSource interface {
	Login(ctx context.Context, username, password string) error
	SetDifficulty(ctx context.Context, difficulty wtm.Difficulty) error
	RandomShot(ctx context.Context, requireSolution bool) (*wtm.Shot, error)
}

// Config carries the engine's timing and sizing knobs.
type Config struct {
	Shots     int
	GuessTime time.Duration
	Cooldown  time.Duration
	QueueSize int
}

func DefaultConfig() Config {
	return Config{
		Shots:     12,
		GuessTime: 30 * time.Second,
		Cooldown:  3 * time.Second,
		QueueSize: 3,
	}
}

func log() *logrus.Entry {
	return logrus.WithField("module", "game")
}

// Game drives one quiz: a producer fills a bounded shot queue while the
// guess loop plays the shots one round at a time. All state mutations go
// through mu, which keeps the single-writer discipline the round
// lifecycle relies on.
type Game struct {
	ID string

	mu        sync.Mutex
	status    Status
	scores    map[string]int
	combo     *Combo
	round     *Round
	countdown *Countdown

	source   ShotSource
	emitter  *Emitter
	stats    *stats.Recorder
	cfg      Config
	username string
	password string

	startedAt  time.Time
	difficulty wtm.Difficulty
}

func New(source ShotSource, username, password string, cfg Config) *Game {
	return &Game{
		ID:       uuid.NewString(),
		status:   StatusIdle,
		scores:   make(map[string]int),
		source:   source,
		emitter:  NewEmitter(),
		stats:    stats.NewRecorder(),
		cfg:      cfg,
		username: username,
		password: password,
	}
}

// Subscribe registers a handler for one of the engine's events.
func (g *Game) Subscribe(eventType EventType, handler Handler) {
	g.emitter.Subscribe(eventType, handler)
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Scores returns a copy of the score table, keyed by player name.
func (g *Game) Scores() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoresLocked()
}

func (g *Game) scoresLocked() map[string]int {
	scores := make(map[string]int, len(g.scores))
	for name, points := range g.scores {
		scores[name] = points
	}
	return scores
}

// Stats returns the per-player stats snapshot, keyed by player
// identifier.
func (g *Game) Stats() map[string]stats.PlayerGameStat {
	return g.stats.Snapshot()
}

// StartedAt is the instant Run began, zero before that.
func (g *Game) StartedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startedAt
}

// Difficulty is the difficulty the game was started with.
func (g *Game) Difficulty() wtm.Difficulty {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.difficulty
}

// Run plays a full game and blocks until it finishes or ctx is
// cancelled. A Game must not be reused after Run returns.
func (g *Game) Run(ctx context.Context, difficulty wtm.Difficulty) error {
	g.mu.Lock()
	if g.status != StatusIdle {
		g.mu.Unlock()
		return ErrNotIdle
	}
	g.status = StatusLoading
	g.startedAt = time.Now()
	g.difficulty = difficulty
	g.mu.Unlock()

	if err := g.source.Login(ctx, g.username, g.password); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if err := g.source.SetDifficulty(ctx, difficulty); err != nil {
		return fmt.Errorf("setting difficulty: %w", err)
	}

	queue := make(chan *wtm.Shot, g.cfg.QueueSize)
	go g.populateQueue(ctx, queue)
	g.guessLoop(ctx, queue)

	return ctx.Err()
}

// populateQueue is the producer: it fetches shots one at a time into the
// bounded queue and closes it when done, which is what lets the guess
// loop terminate.
func (g *Game) populateQueue(ctx context.Context, queue chan<- *wtm.Shot) {
	defer close(queue)

	for i := 0; i < g.cfg.Shots; i++ {
		log().WithField("game", g.ID).Debug("fetching shot")
		shot, err := g.source.RandomShot(ctx, true)
		if err != nil {
			log().WithField("game", g.ID).WithError(err).Warn("stopping shot fetch")
			return
		}
		select {
		case queue <- shot:
		case <-ctx.Done():
			return
		}
	}
}

// guessLoop is the consumer: one iteration per shot, each bounded by the
// round countdown.
func (g *Game) guessLoop(ctx context.Context, queue <-chan *wtm.Shot) {
	log().WithField("game", g.ID).Info("starting guess loop")

	number := 0
	for shot := range queue {
		number++

		// Round, countdown and status flip together so a guess arriving
		// right after the event cannot cancel a stale countdown.
		g.mu.Lock()
		g.round = NewRound(shot)
		countdown := g.round.Start(g.cfg.GuessTime)
		g.countdown = countdown
		g.status = StatusWaitingForGuesses
		g.mu.Unlock()

		g.emitter.Emit(NewShotEvent{Number: number, Total: g.cfg.Shots, Shot: shot})

		timedOut := false
		select {
		case <-countdown.Cancelled():
		case <-countdown.Elapsed():
			// A correct guess or skip may have cancelled in the same
			// instant; cancellation wins so no timeout fires on top of it.
			select {
			case <-countdown.Cancelled():
			default:
				timedOut = true
			}
		case <-ctx.Done():
			return
		}

		g.mu.Lock()
		g.status = StatusIdle
		if timedOut {
			g.combo = nil
		}
		g.mu.Unlock()

		if timedOut {
			g.emitter.Emit(ShotTimeoutEvent{Shot: shot})
		}

		// Let people cool down after the solution was shown.
		select {
		case <-time.After(g.cfg.Cooldown):
		case <-ctx.Done():
			return
		}
	}

	g.emitter.Emit(GameFinishedEvent{Scores: g.Scores()})
}

// HandleGuess scores a free-text guess. Outside of a running round it is
// a no-op. ref is an opaque reference to the triggering chat message,
// passed through to the emitted event.
func (g *Game) HandleGuess(playerID, playerName, guess string, ref any) {
	g.mu.Lock()
	if g.status != StatusWaitingForGuesses || g.round == nil {
		g.mu.Unlock()
		return
	}

	if _, ok := g.scores[playerName]; !ok {
		g.scores[playerName] = 0
	}

	firstGuess := !g.round.HasGuessed(playerID)
	match, matched := g.round.RegisterGuess(playerID, guess)

	var reaction *float64
	if firstGuess {
		seconds := g.round.Elapsed().Seconds()
		reaction = &seconds
	}

	if matched && match.Score >= fuzzy.Threshold {
		g.scoreCorrectGuess(playerID, playerName, match, firstGuess, reaction, ref)
		return
	}

	g.stats.RecordGuess(playerID, playerName, stats.Guess{Reaction: reaction})
	if g.combo != nil && g.combo.PlayerID == playerID {
		g.combo = nil
	}
	g.mu.Unlock()

	g.emitter.Emit(IncorrectGuessEvent{Player: playerName, Guess: guess, Ref: ref})
}

// scoreCorrectGuess applies combo and points for a winning guess. Called
// with g.mu held; unlocks it.
func (g *Game) scoreCorrectGuess(playerID, playerName string, match fuzzy.Match, firstGuess bool, reaction *float64, ref any) {
	if g.combo != nil && g.combo.PlayerID == playerID {
		g.combo = &Combo{PlayerID: playerID, Count: g.combo.Count + 1}
	} else {
		g.combo = &Combo{PlayerID: playerID, Count: 1}
	}

	points := g.combo.Count
	if points > MaxCombo {
		points = MaxCombo
	}
	g.scores[playerName] += points

	precision := match.Score
	g.stats.RecordGuess(playerID, playerName, stats.Guess{
		Correct:   true,
		Ace:       firstGuess,
		Reaction:  reaction,
		Streak:    g.combo.Count,
		Precision: &precision,
	})

	g.status = StatusLoading
	scores := g.scoresLocked()
	combo := g.combo.Count
	countdown := g.countdown
	g.mu.Unlock()

	g.emitter.Emit(CorrectGuessEvent{
		Player: playerName,
		Title:  match.Title,
		Points: points,
		Combo:  combo,
		Scores: scores,
		Ref:    ref,
	})
	if countdown != nil {
		countdown.Cancel()
	}
}

// VoteSkip records a skip vote and force-advances the round once the
// quorum of floor(scored players / 2) is reached. Outside of a running
// round it is a no-op.
func (g *Game) VoteSkip(playerID, playerName string, ref any) {
	g.mu.Lock()
	if g.status != StatusWaitingForGuesses || g.round == nil {
		g.mu.Unlock()
		return
	}

	if g.round.RegisterSkipVote(playerID) {
		g.stats.RecordSkip(playerID, playerName)
	}

	if g.round.SkipVoteCount() < len(g.scores)/2 {
		g.mu.Unlock()
		return
	}

	if g.combo != nil && g.round.HasSkipVote(g.combo.PlayerID) {
		g.combo = nil
	}
	shot := g.round.Shot()
	countdown := g.countdown
	g.mu.Unlock()

	g.emitter.Emit(ShotSkippedEvent{Shot: shot, Ref: ref})
	if countdown != nil {
		countdown.Cancel()
	}
}
