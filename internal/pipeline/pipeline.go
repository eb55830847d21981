// Package pipeline orchestrates a triangulation run end to end: portal
// download, station merge, cleaning, pair matching, regression, and report
// generation, with each phase tracked in the run store.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blue-thumb/triangulate/internal/config"
	"github.com/blue-thumb/triangulate/internal/ingest"
	"github.com/blue-thumb/triangulate/internal/model"
	"github.com/blue-thumb/triangulate/internal/report"
	"github.com/blue-thumb/triangulate/internal/store"
	"github.com/blue-thumb/triangulate/internal/triangulate"
	"github.com/blue-thumb/triangulate/pkg/wqp"
)

// Pipeline runs the triangulation phases against a run store.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
	wqp   wqp.Client
}

// New creates a Pipeline with all dependencies.
func New(cfg *config.Config, st store.Store, client wqp.Client) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, wqp: client}
}

// ParamsFromConfig snapshots the configured study parameters for a run record.
func ParamsFromConfig(cfg *config.Config) model.RunParams {
	return model.RunParams{
		State:             cfg.DataSources.State,
		Characteristic:    cfg.DataSources.Characteristic,
		StartDate:         cfg.DataSources.DateRange.Start,
		EndDate:           cfg.DataSources.DateRange.End,
		VolunteerOrgs:     cfg.Organizations.Volunteer,
		ProfessionalOrgs:  cfg.Organizations.Professional,
		MaxDistanceMeters: cfg.Matching.MaxDistanceMeters,
		MaxTimeHours:      cfg.Matching.MaxTimeHours,
		MinConcentration:  cfg.Matching.MinConcentrationMgL,
		Strategy:          cfg.Matching.MatchStrategy,
	}
}

// NewRun creates the persistent run record. Execute carries it through the
// phases; the split lets the HTTP API return the run ID before the work
// starts.
func (p *Pipeline) NewRun(ctx context.Context) (*model.Run, error) {
	run, err := p.store.CreateRun(ctx, ParamsFromConfig(p.cfg))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

// Run executes the full pipeline and returns the completed run.
func (p *Pipeline) Run(ctx context.Context) (*model.Run, error) {
	run, err := p.NewRun(ctx)
	if err != nil {
		return nil, err
	}
	result, err := p.Execute(ctx, run)
	if err != nil {
		return nil, err
	}
	run.Result = result
	run.Status = model.RunStatusComplete
	return run, nil
}

// Execute runs the pipeline phases for an existing run record. The run is
// marked failed in the store if any phase errors.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) (*model.RunResult, error) {
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting run",
		zap.String("state", run.Params.State),
		zap.String("characteristic", run.Params.Characteristic),
	)

	result := &model.RunResult{}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		result.Phases = append(result.Phases, *phaseResult)

		if fnErr != nil {
			setStatus(model.RunStatusFailed)
			return eris.Wrapf(fnErr, "pipeline: phase %s", name)
		}
		return nil
	}

	// ===== Fetch: Result and Station exports in parallel =====
	setStatus(model.RunStatusFetching)

	query := wqp.Query{
		StateCode:      p.cfg.DataSources.StateCode,
		Characteristic: p.cfg.DataSources.Characteristic,
		SiteType:       p.cfg.DataSources.SiteType,
		SampleMedia:    p.cfg.DataSources.SampleMedia,
		StartDate:      p.cfg.DataSources.DateRange.Start,
		EndDate:        p.cfg.DataSources.DateRange.End,
	}

	var resultsPath, stationsPath string
	if err := trackPhase("fetch", func() (*model.PhaseResult, error) {
		if mkErr := os.MkdirAll(p.cfg.Output.RawData, 0o755); mkErr != nil {
			return nil, eris.Wrap(mkErr, "create raw data dir")
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			path, dlErr := p.wqp.DownloadResults(gCtx, query, p.cfg.Output.RawData)
			resultsPath = path
			return dlErr
		})
		g.Go(func() error {
			path, dlErr := p.wqp.DownloadStations(gCtx, query, p.cfg.Output.RawData)
			stationsPath = path
			return dlErr
		})
		if gErr := g.Wait(); gErr != nil {
			return nil, gErr
		}

		return &model.PhaseResult{
			Metadata: map[string]any{
				"results_file":  resultsPath,
				"stations_file": stationsPath,
			},
		}, nil
	}); err != nil {
		return nil, err
	}

	// ===== Clean: merge station coordinates, filter, split =====
	setStatus(model.RunStatusCleaning)

	var volunteers, professionals []model.Observation
	if err := trackPhase("clean", func() (*model.PhaseResult, error) {
		if mkErr := os.MkdirAll(p.cfg.Output.ProcessedData, 0o755); mkErr != nil {
			return nil, eris.Wrap(mkErr, "create processed data dir")
		}

		mergedPath := filepath.Join(p.cfg.Output.ProcessedData, "merged_results.csv")
		merged, mergeErr := ingest.MergeStationCoords(ctx, resultsPath, stationsPath, mergedPath)
		if mergeErr != nil {
			return nil, mergeErr
		}

		var stats ingest.CleanStats
		var cleanErr error
		volunteers, professionals, stats, cleanErr = ingest.CleanFile(ctx, mergedPath, ingest.CleanOptions{
			Characteristic:      p.cfg.DataSources.Characteristic,
			VolunteerOrgs:       p.cfg.Organizations.Volunteer,
			ProfessionalOrgs:    p.cfg.Organizations.Professional,
			MinConcentrationMgL: p.cfg.Matching.MinConcentrationMgL,
		})
		if cleanErr != nil {
			return nil, cleanErr
		}

		suffix := strings.ToLower(p.cfg.DataSources.Characteristic)
		if wErr := ingest.WriteObservations(
			filepath.Join(p.cfg.Output.ProcessedData, fmt.Sprintf("volunteer_%s.csv", suffix)), volunteers,
		); wErr != nil {
			return nil, wErr
		}
		if wErr := ingest.WriteObservations(
			filepath.Join(p.cfg.Output.ProcessedData, fmt.Sprintf("professional_%s.csv", suffix)), professionals,
		); wErr != nil {
			return nil, wErr
		}

		result.VolunteerCount = len(volunteers)
		result.ProfessionalCount = len(professionals)

		return &model.PhaseResult{
			Metadata: map[string]any{
				"merged_rows":   merged,
				"total":         stats.Total,
				"volunteers":    stats.Volunteers,
				"professionals": stats.Professionals,
			},
		}, nil
	}); err != nil {
		return nil, err
	}

	// ===== Match =====
	setStatus(model.RunStatusMatching)

	var pairs []model.MatchedPair
	if err := trackPhase("match", func() (*model.PhaseResult, error) {
		strategy, sErr := triangulate.ParseStrategy(p.cfg.Matching.MatchStrategy)
		if sErr != nil {
			return nil, sErr
		}

		var matchErr error
		pairs, matchErr = triangulate.MatchParallel(ctx, volunteers, professionals, triangulate.MatchConfig{
			MaxDistanceMeters:   p.cfg.Matching.MaxDistanceMeters,
			MaxTimeHours:        p.cfg.Matching.MaxTimeHours,
			MinConcentrationMgL: p.cfg.Matching.MinConcentrationMgL,
			Strategy:            strategy,
		}, p.cfg.Matching.Workers)
		if matchErr != nil {
			return nil, matchErr
		}

		if saveErr := p.store.SavePairs(ctx, run.ID, pairs); saveErr != nil {
			return nil, saveErr
		}

		result.PairCount = len(pairs)
		return &model.PhaseResult{
			Metadata: map[string]any{"pairs": len(pairs)},
		}, nil
	}); err != nil {
		return nil, err
	}

	// ===== Summarize =====
	if err := trackPhase("summarize", func() (*model.PhaseResult, error) {
		summary, sumErr := triangulate.Summarize(pairs)
		if eris.Is(sumErr, triangulate.ErrInsufficientSample) {
			result.InsufficientData = true
			log.Warn("pipeline: too few pairs for regression", zap.Int("pairs", len(pairs)))
			return &model.PhaseResult{
				Metadata: map[string]any{"insufficient_data": true},
			}, nil
		}
		if sumErr != nil {
			return nil, sumErr
		}

		result.Summary = summary
		return &model.PhaseResult{
			Metadata: map[string]any{
				"n":         summary.N,
				"slope":     summary.Slope,
				"r_squared": summary.RSquared,
			},
		}, nil
	}); err != nil {
		return nil, err
	}

	// ===== Report =====
	if err := trackPhase("report", func() (*model.PhaseResult, error) {
		outDir := filepath.Join(p.cfg.Output.Results, run.ID)
		if wErr := report.WriteAll(outDir, pairs, result.Summary, run.Params); wErr != nil {
			return nil, wErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{"output_dir": outDir},
		}, nil
	}); err != nil {
		return nil, err
	}

	if err := p.store.UpdateRunResult(ctx, run.ID, result); err != nil {
		return nil, eris.Wrap(err, "pipeline: save run result")
	}

	log.Info("pipeline: run complete",
		zap.Int("volunteers", result.VolunteerCount),
		zap.Int("professionals", result.ProfessionalCount),
		zap.Int("pairs", result.PairCount),
	)
	return result, nil
}
