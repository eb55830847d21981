package triangulate

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/blue-thumb/triangulate/internal/model"
)

// Strategy selects how qualifying candidates are kept per volunteer
// observation.
type Strategy string

const (
	// StrategyAll keeps every qualifying pair; one volunteer observation may
	// match many professional observations and vice versa.
	StrategyAll Strategy = "all"
	// StrategyNearest keeps, per volunteer observation, only the qualifying
	// candidate at minimum distance.
	StrategyNearest Strategy = "nearest"
)

// ParseStrategy maps a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAll, "":
		return StrategyAll, nil
	case StrategyNearest:
		return StrategyNearest, nil
	}
	return "", eris.Errorf("unknown match strategy %q", s)
}

// MatchConfig carries the matching thresholds. It is passed explicitly to
// Match and never read from ambient state.
type MatchConfig struct {
	MaxDistanceMeters   float64
	MaxTimeHours        float64
	MinConcentrationMgL float64 // applies to professional observations only
	Strategy            Strategy
}

// Match enumerates the full Cartesian product of the two input sequences and
// emits every pair within the distance and time thresholds whose professional
// concentration exceeds the minimum. Output order is insertion order:
// volunteers outer, professionals inner, both in input order.
//
// The brute-force scan is deliberate: at tens of thousands of records it is
// fast enough and far easier to verify than a spatial index.
func Match(volunteers, professionals []model.Observation, cfg MatchConfig) ([]model.MatchedPair, error) {
	for _, o := range volunteers {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}
	// The concentration gate is applied once per professional, ahead of the
	// inner loop.
	eligible := make([]bool, len(professionals))
	for i, o := range professionals {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		eligible[i] = o.Concentration > cfg.MinConcentrationMgL
	}

	var pairs []model.MatchedPair
	for _, v := range volunteers {
		pairs = append(pairs, matchOne(v, professionals, eligible, cfg)...)
	}
	return pairs, nil
}

// matchOne scans the professional set for a single volunteer observation.
// Inputs are pre-validated.
func matchOne(v model.Observation, professionals []model.Observation, eligible []bool, cfg MatchConfig) []model.MatchedPair {
	var out []model.MatchedPair
	bestIdx := -1
	var bestPair model.MatchedPair

	for i, p := range professionals {
		if !eligible[i] {
			continue
		}
		d := haversine(v.Latitude, v.Longitude, p.Latitude, p.Longitude)
		if d > cfg.MaxDistanceMeters {
			continue
		}
		t := TimeDiff(v, p)
		if t > cfg.MaxTimeHours {
			continue
		}

		pair := model.MatchedPair{
			VolSiteID:       v.SiteID,
			ProSiteID:       p.SiteID,
			VolOrganization: v.Organization,
			ProOrganization: p.Organization,
			VolValue:        v.Concentration,
			ProValue:        p.Concentration,
			VolUnits:        v.Units,
			ProUnits:        p.Units,
			VolDateTime:     v.Timestamp,
			ProDateTime:     p.Timestamp,
			VolLat:          v.Latitude,
			VolLon:          v.Longitude,
			ProLat:          p.Latitude,
			ProLon:          p.Longitude,
			DistanceMeters:  d,
			TimeDiffHours:   t,
		}

		switch cfg.Strategy {
		case StrategyNearest:
			if bestIdx == -1 || d < bestPair.DistanceMeters {
				bestIdx = i
				bestPair = pair
			}
		default:
			out = append(out, pair)
		}
	}

	if cfg.Strategy == StrategyNearest && bestIdx >= 0 {
		out = append(out, bestPair)
	}
	return out
}

// MatchParallel is Match with the volunteer scan partitioned across workers.
// Each (v, p) evaluation is independent and all inputs are immutable, so the
// only ordering work is reassembling per-volunteer results back into the
// canonical insertion order. Output is identical to Match.
func MatchParallel(ctx context.Context, volunteers, professionals []model.Observation, cfg MatchConfig, workers int) ([]model.MatchedPair, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(volunteers) < 2 {
		return Match(volunteers, professionals, cfg)
	}

	for _, o := range volunteers {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}
	eligible := make([]bool, len(professionals))
	for i, o := range professionals {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		eligible[i] = o.Concentration > cfg.MinConcentrationMgL
	}

	perVolunteer := make([][]model.MatchedPair, len(volunteers))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range volunteers {
		g.Go(func() error {
			perVolunteer[i] = matchOne(volunteers[i], professionals, eligible, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []model.MatchedPair
	for _, ps := range perVolunteer {
		pairs = append(pairs, ps...)
	}
	return pairs, nil
}
