package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/sim"
)

// ExportData is the flat JSON shape consumed by external plotting tools.
type ExportData struct {
	Scenario   string               `json:"scenario"`
	Integrator string               `json:"integrator"`
	Dt         float64              `json:"dt"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	Energy     []float64            `json:"energy"`
	Entropy    []float64            `json:"entropy"`
	Records    []map[string]float64 `json:"records"`
	AuditValid bool                 `json:"audit_valid"`
	Drift      map[string]float64   `json:"drift"`
}

// ExportJSON writes a whole run trace to a single JSON file.
func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	data := ExportData{
		Scenario:   cfg.Name,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Steps:      result.StepsTaken,
		Times:      result.Times,
		Energy:     result.Energy,
		Entropy:    result.Entropy,
		Records:    result.Records,
		AuditValid: result.Audit.Valid,
		Drift:      result.Audit.Errors,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
