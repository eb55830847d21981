package report

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/blue-thumb/triangulate/internal/model"
)

// paramsSnapshot is the YAML shape of the run parameter snapshot written
// next to the other outputs so a run can be reproduced later.
type paramsSnapshot struct {
	State          string `yaml:"state"`
	Characteristic string `yaml:"characteristic"`
	StartDate      string `yaml:"start_date,omitempty"`
	EndDate        string `yaml:"end_date,omitempty"`

	VolunteerOrgs    []string `yaml:"volunteer_orgs,omitempty"`
	ProfessionalOrgs []string `yaml:"professional_orgs,omitempty"`

	Matching struct {
		MaxDistanceMeters float64 `yaml:"max_distance_meters"`
		MaxTimeHours      float64 `yaml:"max_time_hours"`
		MinConcentration  float64 `yaml:"min_concentration_mg_l"`
		Strategy          string  `yaml:"strategy"`
	} `yaml:"matching"`
}

// WriteParamsSnapshot writes the run parameters as YAML to path.
func WriteParamsSnapshot(path string, params model.RunParams) error {
	var snap paramsSnapshot
	snap.State = params.State
	snap.Characteristic = params.Characteristic
	snap.StartDate = params.StartDate
	snap.EndDate = params.EndDate
	snap.VolunteerOrgs = params.VolunteerOrgs
	snap.ProfessionalOrgs = params.ProfessionalOrgs
	snap.Matching.MaxDistanceMeters = params.MaxDistanceMeters
	snap.Matching.MaxTimeHours = params.MaxTimeHours
	snap.Matching.MinConcentration = params.MinConcentration
	snap.Matching.Strategy = params.Strategy

	out, err := yaml.Marshal(&snap)
	if err != nil {
		return eris.Wrap(err, "report: marshal params snapshot")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrap(err, "report: write params snapshot")
	}
	return nil
}
