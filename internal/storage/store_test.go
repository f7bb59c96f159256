package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sirResult() *dynamo.Result {
	return &dynamo.Result{
		Times: []float64{0, 0.1},
		States: []dynamo.State{
			{1 - 1e-5, 1e-5, 0},
			{0.99998, 1.2e-5, 3.3e-6},
		},
		Labels:     []string{"S", "I", "R"},
		Metrics:    map[string]float64{"peak_I": 1.2e-5},
		StepsTaken: 1,
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := New(dir, nil)
	require.NoError(t, st.Init())
	return st, dir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)

	info := RunInfo{Model: "sir", Preset: "baseline", Dt: 0.1, Steps: 1, Params: map[string]float64{"r0": 3}}
	runID, err := st.Save(info, sirResult())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "sir_"), runID)
	assert.Len(t, runID, len("sir_")+8)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "sir", meta.Model)
	assert.Equal(t, "baseline", meta.Preset)
	assert.Equal(t, "rk4", meta.Integrator)
	assert.Equal(t, 1, meta.StepsTaken)
	assert.Equal(t, []string{"S", "I", "R"}, meta.Labels)
	assert.Equal(t, 1.2e-5, meta.Metrics["peak_I"])
	assert.Equal(t, 3.0, meta.Params["r0"])

	states, times, labels, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1}, times)
	assert.Equal(t, []string{"S", "I", "R"}, labels)
	require.Len(t, states, 2)
	assert.Equal(t, 1e-5, states[0][1], "values must survive the round trip exactly")
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	st, dir := newStore(t)

	result := sirResult()
	result.Times = result.Times[:1]
	_, err := st.Save(RunInfo{Model: "sir"}, result)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreUniqueIDs(t *testing.T) {
	st, _ := newStore(t)

	a, err := st.Save(RunInfo{Model: "sir"}, sirResult())
	require.NoError(t, err)
	b, err := st.Save(RunInfo{Model: "sir"}, sirResult())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStoreList(t *testing.T) {
	st, dir := newStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunInfo{Model: "sir"}, sirResult())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := st.Save(RunInfo{Model: "lorenz"}, sirResult())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-run"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"), nil)
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	st, dir := newStore(t)

	runID, err := st.Save(RunInfo{Model: "sir"}, sirResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))

	data, err := os.ReadFile(filepath.Join(dir, runID, "states.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "x,S,I,R", lines[0])
}

func TestStoreDefaultLabels(t *testing.T) {
	st, _ := newStore(t)

	result := sirResult()
	result.Labels = nil
	runID, err := st.Save(RunInfo{Model: "custom"}, result)
	require.NoError(t, err)

	_, _, labels, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"y0", "y1", "y2"}, labels)
}

func TestStoreLoadResult(t *testing.T) {
	st, _ := newStore(t)

	runID, err := st.Save(RunInfo{Model: "sir", Dt: 0.1}, sirResult())
	require.NoError(t, err)

	meta, res, err := st.LoadResult(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, sirResult().States, res.States)
	assert.Equal(t, 1, res.StepsTaken)
	assert.Equal(t, []float64{1e-5, 1.2e-5}, res.Component(1))
}

func TestStoreLoadMissing(t *testing.T) {
	st, _ := newStore(t)

	_, err := st.Load("nope")
	assert.Error(t, err)
	_, _, _, err = st.LoadStates("nope")
	assert.Error(t, err)
}

func TestStoreRejectsCorruptStates(t *testing.T) {
	st, dir := newStore(t)

	runID, err := st.Save(RunInfo{Model: "sir"}, sirResult())
	require.NoError(t, err)
	path := filepath.Join(dir, runID, "states.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,S\n0,abc\n"), 0644))

	_, _, _, err = st.LoadStates(runID)
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := &RunMetadata{ID: "sir_abcd1234", Model: "sir", Integrator: "rk4", Dt: 0.1}
	require.NoError(t, ExportJSON(&buf, meta, sirResult()))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "sir_abcd1234", data.ID)
	assert.Equal(t, []string{"S", "I", "R"}, data.Labels)
	assert.Len(t, data.States, 2)
	assert.Equal(t, 1, data.Steps)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sirResult()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "x,S,I,R", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",1e-05,0"), lines[1])
}
