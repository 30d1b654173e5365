package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the bot needs at startup. Credentials come
// from the environment; the rest has defaults.
type Config struct {
	WtmUser      string
	WtmPassword  string
	DiscordToken string
	TmdbToken    string

	DatabaseURL string
	DataDir     string

	Shots     int
	GuessTime time.Duration
	Cooldown  time.Duration
}

// requiredVars are the environment variables without which the bot
// cannot run.
var requiredVars = []string{"WTM_USER", "WTM_PASSWORD", "DISCORD_TOKEN", "TMDB_TOKEN"}

// Load reads configuration from the environment. Required variables are
// checked up front so a single startup failure reports every missing
// value at once.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("SHOTS", 12)
	v.SetDefault("GUESS_TIME", 30*time.Second)
	v.SetDefault("COOLDOWN", 3*time.Second)

	var missing []string
	for _, name := range requiredVars {
		if v.GetString(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf(
			"the following environment variables are missing: %s",
			strings.Join(missing, ", "),
		)
	}

	return Config{
		WtmUser:      v.GetString("WTM_USER"),
		WtmPassword:  v.GetString("WTM_PASSWORD"),
		DiscordToken: v.GetString("DISCORD_TOKEN"),
		TmdbToken:    v.GetString("TMDB_TOKEN"),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		DataDir:      v.GetString("DATA_DIR"),
		Shots:        v.GetInt("SHOTS"),
		GuessTime:    v.GetDuration("GUESS_TIME"),
		Cooldown:     v.GetDuration("COOLDOWN"),
	}, nil
}
