package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"github.com/sephii/wtm-bot/internal/game"
	"github.com/sephii/wtm-bot/internal/stats"
	"github.com/sephii/wtm-bot/internal/store"
	"github.com/sephii/wtm-bot/internal/wtm"
)

func log() *logrus.Entry {
	return logrus.WithField("module", "discord")
}

// ErrGameInProgress means a channel already has a running game. Starting
// another one is rejected without telling the channel, so mid-game start
// commands do not disrupt play.
var ErrGameInProgress = errors.New("a game is already running on this channel")

// Bot connects the game engine to Discord. It keeps at most one game per
// channel and persists finished games to the store.
type Bot struct {
	session *discordgo.Session
	store   store.Store
	source  func() game.ShotSource
	cfg     game.Config

	wtmUser     string
	wtmPassword string

	mu    sync.Mutex
	games map[string]*game.Game
}

// New builds a bot from a Discord token. The source factory yields a
// fresh shot source per game, so each game logs in with its own session.
func New(token, wtmUser, wtmPassword string, st store.Store, source func() game.ShotSource, cfg game.Config) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("unable to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions

	b := &Bot{
		session:     session,
		store:       st,
		source:      source,
		cfg:         cfg,
		wtmUser:     wtmUser,
		wtmPassword: wtmPassword,
		games:       make(map[string]*game.Game),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.onMessage(context.Background(), m)
	})
	return b, nil
}

// Run opens the gateway connection and blocks until the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("unable to open discord connection: %w", err)
	}
	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	log().WithField("user", r.User.Username).Info("logged in")
}

func (b *Bot) gameFor(channelID string) *game.Game {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.games[channelID]
}

func (b *Bot) onMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == b.session.State.User.ID {
		return
	}

	g := b.gameFor(m.ChannelID)

	command, err := parseCommand(m.Content, b.session.State.User.ID)
	if err != nil {
		b.send(m.ChannelID, err.Error())
		return
	}

	switch {
	case command != nil && command.Type == CommandStart:
		b.startGame(ctx, m.ChannelID, command.Args)
	case command != nil && command.Type == CommandSkip:
		if g != nil && g.Status() == game.StatusWaitingForGuesses {
			g.VoteSkip(m.Author.ID, m.Author.Username, messageRef{m.ChannelID, m.ID})
		}
	case command != nil && command.Type == CommandLeaderboard:
		b.showLeaderboard(m.ChannelID, command.Args)
	case command != nil && command.Type == CommandHelp:
		b.send(m.ChannelID, "Available commands are: start [easy|medium|hard], skip, leaderboard [easy|medium|hard|all].")
	case g != nil && g.Status() == game.StatusWaitingForGuesses:
		g.HandleGuess(m.Author.ID, m.Author.Username, m.Content, messageRef{m.ChannelID, m.ID})
	}
}

func (b *Bot) startGame(ctx context.Context, channelID string, args []string) {
	difficulty := wtm.DifficultyEasy
	if len(args) > 0 {
		parsed, err := wtm.ParseDifficulty(args[0])
		if err != nil || parsed == wtm.DifficultyAll {
			b.send(channelID, "Please select a valid difficulty: "+difficultyList())
			return
		}
		difficulty = parsed
	}

	g, err := b.registerGame(channelID)
	if err != nil {
		log().WithError(err).WithField("channel", channelID).Error("unable to start game")
		return
	}

	attach(b.session, channelID, g)

	b.send(channelID, fmt.Sprintf(
		"Get ready, a new game is about to start in **%s** difficulty! Aaaaaand action! 🎬",
		difficulty,
	))

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.games, channelID)
			b.mu.Unlock()
		}()

		if err := g.Run(ctx, difficulty); err != nil {
			log().WithError(err).WithField("channel", channelID).Error("game aborted")
			b.send(channelID, "Something went wrong, the game was aborted. Sorry!")
			return
		}

		players := g.Stats()
		if len(players) == 0 {
			return
		}
		record := store.GameRecord{
			Difficulty: g.Difficulty(),
			StartedAt:  g.StartedAt(),
			Players:    players,
		}
		if err := b.store.Append(channelID, record); err != nil {
			log().WithError(err).WithField("channel", channelID).Error("unable to save game")
		}
	}()
}

// registerGame claims the channel's game slot, failing with
// ErrGameInProgress when another game holds it.
func (b *Bot) registerGame(channelID string) (*game.Game, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing := b.games[channelID]; existing != nil && existing.Status() != game.StatusIdle {
		return nil, ErrGameInProgress
	}
	g := game.New(b.source(), b.wtmUser, b.wtmPassword, b.cfg)
	b.games[channelID] = g
	return g, nil
}

func (b *Bot) showLeaderboard(channelID string, args []string) {
	difficulty := wtm.DifficultyAll
	if len(args) > 0 {
		parsed, err := wtm.ParseDifficulty(args[0])
		if err != nil {
			b.send(channelID, "Please select a valid difficulty: "+difficultyList()+", or **all**.")
			return
		}
		difficulty = parsed
	}

	records, err := b.store.Load(channelID, difficulty)
	if err != nil {
		log().WithError(err).WithField("channel", channelID).Error("unable to load game history")
		b.send(channelID, "Unable to load the leaderboard, sorry!")
		return
	}

	games := make([]map[string]stats.PlayerGameStat, 0, len(records))
	for _, record := range records {
		games = append(games, record.Players)
	}

	rows := stats.Leaderboard(games)
	if len(rows) == 0 {
		b.send(channelID, fmt.Sprintf(
			"Nobody is ranked yet. Play at least %d games to enter the leaderboard!",
			stats.MinGamesForRanking,
		))
		return
	}

	b.send(channelID, "```\n"+renderLeaderboard(rows)+"\n```")
}

func renderLeaderboard(rows []stats.LeaderboardRow) string {
	table := NewTable([]Heading{
		{Label: "#", Justify: JustifyRight},
		{Label: "Player"},
		{Label: "Games", Justify: JustifyRight},
		{Label: "Avg correct", Justify: JustifyRight},
		{Label: "Guesses", Justify: JustifyRight},
		{Label: "Correct", Justify: JustifyRight},
		{Label: "Max streak", Justify: JustifyRight},
		{Label: "Avg reaction", Justify: JustifyRight},
	})
	for _, row := range rows {
		table.AddRow(
			fmt.Sprintf("%d", row.Position),
			row.Name,
			fmt.Sprintf("%d", row.GamesPlayed),
			fmt.Sprintf("%.1f", row.AvgCorrect),
			fmt.Sprintf("%d", row.Guesses),
			fmt.Sprintf("%d", row.Correct),
			fmt.Sprintf("%d", row.MaxStreak),
			fmt.Sprintf("%.1fs", row.AvgReaction),
		)
	}
	return table.String()
}

func difficultyList() string {
	parts := make([]string, 0, len(wtm.Difficulties()))
	for _, difficulty := range wtm.Difficulties() {
		parts = append(parts, fmt.Sprintf("**%s**", difficulty))
	}
	return strings.Join(parts, ", ")
}

func (b *Bot) send(channelID, content string) {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		log().WithError(err).Error("unable to send message")
	}
}
