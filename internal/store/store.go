// Package store persists completed runs as a directory of metadata plus a
// state history, one subdirectory per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kestrel-aero/motorsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is the JSON sidecar written next to each run's history.
type RunMetadata struct {
	ID        string             `json:"id"`
	Motor     string             `json:"motor"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	MaxTime   float64            `json:"max_time"`
	Status    string             `json:"status"`
	Truncated bool               `json:"truncated"`
	Flags     []string           `json:"flags,omitempty"`
	Summary   sim.Summary        `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
}

var historyHeader = []string{
	"time", "pressure", "burning_area", "radius",
	"regression_rate", "mass_flow", "thrust", "isp", "mixture_ratio",
}

// Save writes one run. The returned ID names the run directory.
func (s *Store) Save(motor, label string, dt, maxTime float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", motor, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Motor:     motor,
		Label:     label,
		Timestamp: time.Now(),
		Dt:        dt,
		MaxTime:   maxTime,
		Status:    result.Status.String(),
		Truncated: result.Truncated,
		Flags:     result.Flags,
		Summary:   result.Summary,
		Metrics:   result.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, "history.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(historyHeader); err != nil {
		return "", err
	}
	for _, st := range result.States {
		row := []string{
			fmtF(st.Time),
			fmtF(st.Pressure),
			fmtF(st.BurningArea),
			fmtF(st.Radius),
			fmtF(st.RegressionRate),
			fmtF(st.MassFlow),
			fmtF(st.Thrust),
			fmtF(st.Isp),
			fmtF(st.MixtureRatio),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, skipping entries with
// missing or corrupt sidecars.
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

// LoadHistory reads back the committed state sequence of a saved run.
func (s *Store) LoadHistory(runID string) ([]sim.State, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.State{}, nil
	}

	states := make([]sim.State, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(historyHeader) {
			continue
		}
		vals := make([]float64, len(rec))
		ok := true
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		states = append(states, sim.State{
			Time:           vals[0],
			Pressure:       vals[1],
			BurningArea:    vals[2],
			Radius:         vals[3],
			RegressionRate: vals[4],
			MassFlow:       vals[5],
			Thrust:         vals[6],
			Isp:            vals[7],
			MixtureRatio:   vals[8],
		})
	}
	return states, nil
}
