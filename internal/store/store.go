// Package store persists the workflow selection between runs. There is one
// snapshot per store; saving replaces it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/recruitdesk/internal/recruit"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no saved session")

// Snapshot is the state that survives leaving and re-entering the résumé view.
type Snapshot struct {
	SessionID     string          `json:"session_id"`
	ClientID      string          `json:"client_id"`
	RequirementID string          `json:"requirement_id"`
	StatusFilter  string          `json:"status_filter"`
	Resumes       recruit.Resumes `json:"resumes"`
	SavedAt       time.Time       `json:"saved_at"`
}

type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Clear(ctx context.Context) error
}
