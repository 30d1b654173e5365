package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sephii/wtm-bot/internal/config"
	"github.com/sephii/wtm-bot/internal/discord"
	"github.com/sephii/wtm-bot/internal/game"
	"github.com/sephii/wtm-bot/internal/store"
	"github.com/sephii/wtm-bot/internal/tmdb"
	"github.com/sephii/wtm-bot/internal/wtm"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "wtm-bot",
		Short:         "A Discord bot that runs movie still guessing games from whatthemovie.com.",
		Args:          cobra.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "display debug output")

	return cmd
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	titles := tmdb.NewClient(cfg.TmdbToken)
	source := func() game.ShotSource {
		return wtm.NewSession(titles)
	}

	gameCfg := game.DefaultConfig()
	gameCfg.Shots = cfg.Shots
	gameCfg.GuessTime = cfg.GuessTime
	gameCfg.Cooldown = cfg.Cooldown

	bot, err := discord.New(cfg.DiscordToken, cfg.WtmUser, cfg.WtmPassword, st, source, gameCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx)
}

// openStore picks the persistence backend: Postgres when DATABASE_URL is
// set, a per-channel JSON file store otherwise.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewFileStore(cfg.DataDir), nil
	}

	pg, err := store.ConnectPG(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pg.Migrate(); err != nil {
		pg.Close()
		return nil, fmt.Errorf("unable to run migrations: %w", err)
	}
	return pg, nil
}
