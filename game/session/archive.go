package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"seabattle/game/engine"
)

// MatchRecord is the JSON document written for a finished match.
type MatchRecord struct {
	RoomCode     string           `json:"room_code"`
	Winner       Role             `json:"winner"`
	Player1Stats engine.StatsView `json:"player1_stats"`
	Player2Stats engine.StatsView `json:"player2_stats"`
	CreatedAt    time.Time        `json:"created_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// FileArchive stores finished-match records as JSON files, one per room
// code. Archiving is best-effort: failures are for the caller to log, never
// to surface to players.
type FileArchive struct {
	dir string
}

// NewFileArchive creates the archive directory if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileArchive{dir: dir}, nil
}

// Save writes the record to <dir>/<roomCode>.json.
func (a *FileArchive) Save(rec MatchRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	path := filepath.Join(a.dir, rec.RoomCode+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write match record: %w", err)
	}
	return nil
}

// Load reads a previously archived record, mainly for tests and tooling.
func (a *FileArchive) Load(roomCode string) (*MatchRecord, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, roomCode+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read match record: %w", err)
	}

	var rec MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
	}
	return &rec, nil
}
