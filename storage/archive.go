package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
)

// StandingsSnapshot is the archived table of a category right after a round
// closed.
type StandingsSnapshot struct {
	CategoryID  int                `json:"category_id"`
	RoundID     int                `json:"round_id"`
	RoundNumber int                `json:"round_number"`
	RoundStatus models.RoundStatus `json:"round_status"`
	GeneratedAt time.Time          `json:"generated_at"`
	Standings   []*models.Standing `json:"standings"`
}

// Key is stable per round and status, so re-closing a round overwrites its
// earlier snapshot.
func (s StandingsSnapshot) Key() string {
	return fmt.Sprintf("standings/category-%d/round-%d-%s.json", s.CategoryID, s.RoundNumber, s.RoundStatus)
}

type Archiver struct {
	store ObjectStore
}

func NewArchiver(store ObjectStore) *Archiver {
	return &Archiver{store: store}
}

// ArchiveStandings uploads the snapshot as JSON and returns its public URL.
func (a *Archiver) ArchiveStandings(ctx context.Context, snapshot StandingsSnapshot) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode standings snapshot: %w", err)
	}
	result, err := a.store.Put(ctx, snapshot.Key(), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
