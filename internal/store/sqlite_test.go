package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blue-thumb/triangulate/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testParams() model.RunParams {
	return model.RunParams{
		State:             "Oklahoma",
		Characteristic:    "Chloride",
		MaxDistanceMeters: 100,
		MaxTimeHours:      48,
		MinConcentration:  25,
		Strategy:          "all",
	}
}

func TestSQLiteRunLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	run, err := s.CreateRun(ctx, testParams())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusMatching))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusMatching, got.Status)
	assert.Equal(t, "Chloride", got.Params.Characteristic)
	assert.Nil(t, got.Result)

	result := &model.RunResult{
		PairCount: 48,
		Summary:   &model.RegressionSummary{N: 48, Slope: 0.712, RSquared: 0.839},
	}
	require.NoError(t, s.UpdateRunResult(ctx, run.ID, result))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 48, got.Result.PairCount)
	assert.InDelta(t, 0.712, got.Result.Summary.Slope, 1e-12)
}

func TestSQLiteRunNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	_, err := s.GetRun(ctx, "missing")
	assert.Error(t, err)

	assert.Error(t, s.UpdateRunStatus(ctx, "missing", model.RunStatusFailed))
	assert.Error(t, s.UpdateRunResult(ctx, "missing", &model.RunResult{}))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	a, err := s.CreateRun(ctx, testParams())
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testParams())
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLitePhases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	run, err := s.CreateRun(ctx, testParams())
	require.NoError(t, err)

	phase, err := s.CreatePhase(ctx, run.ID, "match")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseStatusRunning, phase.Status)

	require.NoError(t, s.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Name:   "match",
		Status: model.PhaseStatusComplete,
	}))

	assert.Error(t, s.CompletePhase(ctx, "missing", &model.PhaseResult{Status: model.PhaseStatusComplete}))
}

func TestSQLitePairsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSQLite(t)

	run, err := s.CreateRun(ctx, testParams())
	require.NoError(t, err)

	pairs := []model.MatchedPair{
		{VolSiteID: "V1", ProSiteID: "P1", DistanceMeters: 42.5, TimeDiffHours: 3},
		{VolSiteID: "V1", ProSiteID: "P2", DistanceMeters: 88.1, TimeDiffHours: 24},
		{VolSiteID: "V2", ProSiteID: "P1", DistanceMeters: 10.0, TimeDiffHours: 1},
	}
	require.NoError(t, s.SavePairs(ctx, run.ID, pairs))

	got, err := s.GetPairs(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "P1", got[0].ProSiteID)
	assert.InDelta(t, 88.1, got[1].DistanceMeters, 1e-12)

	// Saving again replaces rather than appends.
	require.NoError(t, s.SavePairs(ctx, run.ID, pairs[:1]))
	got, err = s.GetPairs(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
