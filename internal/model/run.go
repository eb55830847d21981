package model

import "time"

// RunStatus tracks the lifecycle of a triangulation run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusFetching RunStatus = "fetching"
	RunStatusCleaning RunStatus = "cleaning"
	RunStatusMatching RunStatus = "matching"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// PhaseStatus tracks a single pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
)

// RunParams records the inputs a run was started with.
type RunParams struct {
	State             string   `json:"state"`
	Characteristic    string   `json:"characteristic"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	VolunteerOrgs     []string `json:"volunteer_orgs"`
	ProfessionalOrgs  []string `json:"professional_orgs"`
	MaxDistanceMeters float64  `json:"max_distance_meters"`
	MaxTimeHours      float64  `json:"max_time_hours"`
	MinConcentration  float64  `json:"min_concentration_mg_l"`
	Strategy          string   `json:"strategy"`
}

// RunResult is the terminal output of a completed run.
type RunResult struct {
	VolunteerCount    int                `json:"volunteer_count"`
	ProfessionalCount int                `json:"professional_count"`
	PairCount         int                `json:"pair_count"`
	Summary           *RegressionSummary `json:"summary,omitempty"`
	InsufficientData  bool               `json:"insufficient_data"`
	Phases            []PhaseResult      `json:"phases,omitempty"`
}

// Run is one persisted execution of the pipeline.
type Run struct {
	ID        string     `json:"id"`
	Params    RunParams  `json:"params"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunPhase is a persisted phase record within a run.
type RunPhase struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id"`
	Name      string      `json:"name"`
	Status    PhaseStatus `json:"status"`
	StartedAt time.Time   `json:"started_at"`
}

// PhaseResult captures the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
