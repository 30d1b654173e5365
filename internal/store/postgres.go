package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/sephii/wtm-bot/internal/stats"
	"github.com/sephii/wtm-bot/internal/wtm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func log() *logrus.Entry {
	return logrus.WithField("module", "store")
}

// PGStore persists game records in PostgreSQL, for deployments where a
// data directory does not survive restarts.
type PGStore struct {
	conn *sql.DB
}

func ConnectPG(dsn string) (*PGStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log().Info("connected to PostgreSQL")
	return &PGStore{conn: conn}, nil
}

func (s *PGStore) Migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log().WithField("migration", entry.Name()).Info("applied migration")
	}
	return nil
}

func (s *PGStore) Append(channelID string, record GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("encoding player stats: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO games (channel_id, difficulty, started_at, players)
		VALUES ($1, $2, $3, $4)
	`, channelID, string(record.Difficulty), record.StartedAt, players)
	if err != nil {
		return fmt.Errorf("inserting game record: %w", err)
	}
	return nil
}

func (s *PGStore) Load(channelID string, difficulty wtm.Difficulty) ([]GameRecord, error) {
	query := `
		SELECT difficulty, started_at, players
		FROM games WHERE channel_id = $1
	`
	args := []any{channelID}
	if difficulty != wtm.DifficultyAll {
		query += ` AND difficulty = $2`
		args = append(args, string(difficulty))
	}
	query += ` ORDER BY started_at`

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading game records: %w", err)
	}
	defer rows.Close()

	var records []GameRecord
	for rows.Next() {
		var record GameRecord
		var players []byte
		if err := rows.Scan(&record.Difficulty, &record.StartedAt, &players); err != nil {
			return nil, fmt.Errorf("scanning game record: %w", err)
		}
		record.Players = make(map[string]stats.PlayerGameStat)
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, fmt.Errorf("decoding player stats: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PGStore) Close() error {
	return s.conn.Close()
}
