package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kestrel-aero/motorsim/internal/sim"
)

// ExportData is the flat JSON shape consumed by external plotting tools.
type ExportData struct {
	Motor     string             `json:"motor"`
	Label     string             `json:"label"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Status    string             `json:"status"`
	Truncated bool               `json:"truncated"`
	Flags     []string           `json:"flags,omitempty"`
	Summary   sim.Summary        `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
	States    []sim.State        `json:"states"`
}

// ExportJSON writes a run to path; pass "-" for stdout.
func ExportJSON(path, motor, label string, dt float64, result *sim.Result) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	data := ExportData{
		Motor:     motor,
		Label:     label,
		Dt:        dt,
		Steps:     len(result.States),
		Status:    result.Status.String(),
		Truncated: result.Truncated,
		Flags:     result.Flags,
		Summary:   result.Summary,
		Metrics:   result.Metrics,
		States:    result.States,
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
