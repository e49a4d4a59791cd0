package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/sim"
)

// Store persists run traces under a base directory, one subdirectory per
// run: metadata.json plus series.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Scenario   string    `json:"scenario"`
	Timestamp  time.Time `json:"timestamp"`
	Dt         float64   `json:"dt"`
	Steps      int       `json:"steps"`
	Integrator string    `json:"integrator"`

	// Final conservation audit.
	AuditValid bool               `json:"audit_valid"`
	Drift      map[string]float64 `json:"drift"`
	Violations []string           `json:"violations"`
}

// columns derives the CSV header from a record: time first, the rest
// sorted so repeated runs produce identical layouts.
func columns(record map[string]float64) []string {
	cols := make([]string, 0, len(record))
	for k := range record {
		if k != "time" {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return append([]string{"time"}, cols...)
}

// Save writes one completed run and returns its id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   cfg.Name,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Steps:      result.StepsTaken,
		Integrator: cfg.Integrator,
		AuditValid: result.Audit.Valid,
		Drift:      result.Audit.Errors,
		Violations: result.Audit.Violations,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(result.Records) == 0 {
		return runID, nil
	}

	header := columns(result.Records[0])
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, rec := range result.Records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = strconv.FormatFloat(rec[col], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List reads metadata for every stored run; unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads a stored trace back as column-keyed records.
func (s *Store) LoadSeries(runID string) ([]map[string]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []map[string]float64{}, nil
	}

	header := rows[0]
	records := make([]map[string]float64, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]float64, len(header))
		for i, col := range header {
			if i >= len(row) {
				break
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				continue
			}
			rec[col] = v
		}
		records = append(records, rec)
	}
	return records, nil
}
