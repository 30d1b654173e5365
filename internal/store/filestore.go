package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sephii/wtm-bot/internal/wtm"
)

// FileStore keeps one JSON file per channel under a data directory. The
// whole file is read, appended to and rewritten on every finished game;
// game history is small and the simplicity wins.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(channelID string) string {
	return filepath.Join(s.dir, channelID+".json")
}

func (s *FileStore) Append(channelID string, record GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(channelID)
	if err != nil {
		return err
	}
	records = append(records, record)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding game records: %w", err)
	}
	if err := os.WriteFile(s.path(channelID), data, 0o644); err != nil {
		return fmt.Errorf("writing game records: %w", err)
	}
	return nil
}

func (s *FileStore) Load(channelID string, difficulty wtm.Difficulty) ([]GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(channelID)
	if err != nil {
		return nil, err
	}
	return filterByDifficulty(records, difficulty), nil
}

// read returns the channel's full history. A missing file just means no
// games were played yet.
func (s *FileStore) read(channelID string) ([]GameRecord, error) {
	data, err := os.ReadFile(s.path(channelID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading game records: %w", err)
	}

	var records []GameRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding game records: %w", err)
	}
	return records, nil
}

func (s *FileStore) Close() error {
	return nil
}
