package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sephii/wtm-bot/internal/game"
	"github.com/sephii/wtm-bot/internal/wtm"
)

type nullSource struct{}

func (nullSource) Login(_ context.Context, _, _ string) error              { return nil }
func (nullSource) SetDifficulty(_ context.Context, _ wtm.Difficulty) error { return nil }
func (nullSource) RandomShot(_ context.Context, _ bool) (*wtm.Shot, error) { return nil, nil }

func newTestBot() *Bot {
	return &Bot{
		source: func() game.ShotSource { return nullSource{} },
		cfg:    game.DefaultConfig(),
		games:  make(map[string]*game.Game),
	}
}

func TestRegisterGame_ClaimsChannel(t *testing.T) {
	bot := newTestBot()

	g, err := bot.registerGame("chan-1")
	if err != nil {
		t.Fatalf("registerGame() error = %v", err)
	}
	if bot.gameFor("chan-1") != g {
		t.Error("registered game is not retrievable for its channel")
	}
}

func TestRegisterGame_RejectsBusyChannel(t *testing.T) {
	bot := newTestBot()

	g, err := bot.registerGame("chan-1")
	if err != nil {
		t.Fatalf("registerGame() error = %v", err)
	}
	// An idle game has not started yet, so its slot can be reclaimed.
	if _, err := bot.registerGame("chan-1"); err != nil {
		t.Fatalf("registerGame() on idle slot error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx, wtm.DifficultyEasy)
	waitUntilRunning(t, g)

	bot.mu.Lock()
	bot.games["chan-1"] = g
	bot.mu.Unlock()

	if _, err := bot.registerGame("chan-1"); !errors.Is(err, ErrGameInProgress) {
		t.Errorf("registerGame() error = %v, want ErrGameInProgress", err)
	}
}

func waitUntilRunning(t *testing.T, g *game.Game) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if g.Status() != game.StatusIdle {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("game never left the idle status")
}
