// Package model defines the shared data types for the triangulation pipeline.
package model

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// SourceRole identifies which monitoring program produced an observation.
type SourceRole string

const (
	RoleVolunteer    SourceRole = "volunteer"
	RoleProfessional SourceRole = "professional"
)

// Observation is a single cleaned water-quality measurement. Instances are
// created by the ingest step and never mutated afterwards.
type Observation struct {
	SiteID        string     `json:"site_id"`
	Organization  string     `json:"organization"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Timestamp     time.Time  `json:"timestamp"`
	Concentration float64    `json:"concentration"`
	Units         string     `json:"units"`
	Role          SourceRole `json:"role"`
}

// ErrInvalidObservation marks observations whose coordinates or timestamp are
// outside their valid domain. Matching aborts on it rather than silently
// pairing corrupted inputs.
var ErrInvalidObservation = eris.New("invalid observation")

// Validate checks the coordinate and timestamp domains.
func (o Observation) Validate() error {
	if math.IsNaN(o.Latitude) || math.IsInf(o.Latitude, 0) ||
		math.IsNaN(o.Longitude) || math.IsInf(o.Longitude, 0) {
		return eris.Wrapf(ErrInvalidObservation, "site %s: non-finite coordinates (%v, %v)", o.SiteID, o.Latitude, o.Longitude)
	}
	if o.Latitude < -90 || o.Latitude > 90 {
		return eris.Wrapf(ErrInvalidObservation, "site %s: latitude %v out of [-90, 90]", o.SiteID, o.Latitude)
	}
	if o.Longitude < -180 || o.Longitude > 180 {
		return eris.Wrapf(ErrInvalidObservation, "site %s: longitude %v out of [-180, 180]", o.SiteID, o.Longitude)
	}
	if o.Timestamp.IsZero() {
		return eris.Wrapf(ErrInvalidObservation, "site %s: zero timestamp", o.SiteID)
	}
	if math.IsNaN(o.Concentration) || o.Concentration < 0 {
		return eris.Wrapf(ErrInvalidObservation, "site %s: concentration %v", o.SiteID, o.Concentration)
	}
	return nil
}

// MatchedPair is one volunteer observation and one professional observation
// jointly satisfying the distance, time, and concentration constraints. The
// scalar columns mirror the matched_pairs.csv schema consumed by reporting.
type MatchedPair struct {
	VolSiteID       string    `json:"vol_site_id"`
	ProSiteID       string    `json:"pro_site_id"`
	VolOrganization string    `json:"vol_organization"`
	ProOrganization string    `json:"pro_organization"`
	VolValue        float64   `json:"vol_value"`
	ProValue        float64   `json:"pro_value"`
	VolUnits        string    `json:"vol_units"`
	ProUnits        string    `json:"pro_units"`
	VolDateTime     time.Time `json:"vol_datetime"`
	ProDateTime     time.Time `json:"pro_datetime"`
	VolLat          float64   `json:"vol_lat"`
	VolLon          float64   `json:"vol_lon"`
	ProLat          float64   `json:"pro_lat"`
	ProLon          float64   `json:"pro_lon"`
	DistanceMeters  float64   `json:"distance_m"`
	TimeDiffHours   float64   `json:"time_diff_hours"`
}

// RegressionSummary holds the OLS fit of volunteer concentrations against
// professional concentrations over the matched pairs.
type RegressionSummary struct {
	N         int     `json:"n"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
}
