// Package store persists triangulation runs and their matched pairs.
package store

import (
	"context"

	"github.com/blue-thumb/triangulate/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the triangulation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, params model.RunParams) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Matched pairs, kept in insertion order per run
	SavePairs(ctx context.Context, runID string, pairs []model.MatchedPair) error
	GetPairs(ctx context.Context, runID string) ([]model.MatchedPair, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
