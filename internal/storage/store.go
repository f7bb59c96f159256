package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/logging"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) *Store {
	return &Store{baseDir: baseDir, logger: logging.OrDiscard(logger)}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a trajectory was produced.
type RunInfo struct {
	Model  string
	Preset string
	Dt     float64
	X0     float64
	Steps  int
	Params map[string]float64
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	X0         float64            `json:"x0"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Labels     []string           `json:"labels"`
	Params     map[string]float64 `json:"params,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

func newRunID(model string) string {
	return fmt.Sprintf("%s_%s", model, uuid.NewString()[:8])
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run id.
func (s *Store) Save(info RunInfo, result *dynamo.Result) (string, error) {
	if result == nil {
		return "", errors.New("storage: nil result")
	}

	runID := newRunID(info.Model)
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      info.Model,
		Preset:     info.Preset,
		Timestamp:  time.Now().UTC(),
		Integrator: "rk4",
		Dt:         info.Dt,
		X0:         info.X0,
		Steps:      info.Steps,
		StepsTaken: result.StepsTaken,
		Labels:     columnLabels(result),
		Params:     info.Params,
		Metrics:    result.Metrics,
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), meta.Labels, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	s.logger.Info("run saved", "id", runID, "dir", runDir, "rows", len(result.States))
	return runID, nil
}

func columnLabels(result *dynamo.Result) []string {
	if len(result.States) == 0 {
		return result.Labels
	}
	dim := len(result.States[0])
	if len(result.Labels) == dim {
		return result.Labels
	}
	labels := make([]string, dim)
	for i := range labels {
		labels[i] = fmt.Sprintf("y%d", i)
	}
	return labels
}

func writeMetadata(path string, meta *RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, labels []string, result *dynamo.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	return writeStatesTo(f, labels, result)
}

// closeFile reports a close failure unless an earlier error is already set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func writeStatesTo(out io.Writer, labels []string, result *dynamo.Result) error {
	if len(result.Times) != len(result.States) {
		return fmt.Errorf("storage: %d times for %d states", len(result.Times), len(result.States))
	}
	w := csv.NewWriter(out)
	if err := w.Write(append([]string{"x"}, labels...)); err != nil {
		return err
	}

	for i := range result.States {
		row := make([]string, 0, len(result.States[i])+1)
		row = append(row, formatFloat(result.Times[i]))
		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, newest first.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.logger.Debug("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStates reads the recorded trajectory of a run along with its column
// labels.
func (s *Store) LoadStates(runID string) (states [][]float64, times []float64, labels []string, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", runID, err)
	}
	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("%s: empty states file", runID)
	}

	labels = records[0][1:]
	times = make([]float64, 0, len(records)-1)
	states = make([][]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%s: row %d: %w", runID, i+1, err)
			}
			row[j] = v
		}
		times = append(times, row[0])
		states = append(states, row[1:])
	}

	return states, times, labels, nil
}

// LoadResult reassembles a stored run as a Result.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, labels, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		Times:      times,
		States:     make([]dynamo.State, len(states)),
		Labels:     labels,
		Metrics:    meta.Metrics,
		StepsTaken: meta.StepsTaken,
	}
	for i, st := range states {
		result.States[i] = st
	}
	return meta, result, nil
}
