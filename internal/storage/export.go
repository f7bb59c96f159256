package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

type ExportData struct {
	ID         string             `json:"id,omitempty"`
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	X0         float64            `json:"x0"`
	Steps      int                `json:"steps"`
	Labels     []string           `json:"labels"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as a single indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, result *dynamo.Result) error {
	data := ExportData{
		ID:         meta.ID,
		Model:      meta.Model,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		X0:         meta.X0,
		Steps:      result.StepsTaken,
		Labels:     result.Labels,
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the trajectory with an "x" column followed by one column
// per label, the same layout as states.csv.
func ExportCSV(w io.Writer, result *dynamo.Result) error {
	return writeStatesTo(w, columnLabels(result), result)
}
