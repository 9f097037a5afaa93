package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/experiment"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

func runPreset(t *testing.T, model, preset string) (*config.Config, *nonlinear.Result) {
	t.Helper()
	cfg := config.GetPreset(model, preset)
	require.NotNil(t, cfg)

	exp := experiment.New(cfg)
	require.NoError(t, exp.Setup(experiment.NewRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil))))
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	return cfg, res
}

func TestCurveGolden(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		preset string
	}{
		{"linear_spring_curve", "spring", "stepped"},
		{"softening_spring_curve", "softening_spring", "load"},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := runPreset(t, tt.model, tt.preset)

			var buf bytes.Buffer
			require.NoError(t, WriteCurve(&buf, res.Curve))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := runPreset(t, "spring", "stepped")
	runID, err := st.Save(cfg, res)
	require.NoError(t, err)
	assert.Contains(t, runID, "spring_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "spring", meta.Model)
	assert.Equal(t, 10, meta.Steps)
	assert.Equal(t, 19, meta.Iterations)
	assert.False(t, meta.Aborted)
	assert.Equal(t, cfg.Steps, meta.Config.Steps)
	assert.InDelta(t, 10, meta.Metrics["steps"], 0)

	curve, err := st.LoadCurve(runID)
	require.NoError(t, err)
	require.Len(t, curve, 11)
	assert.InDelta(t, 0.5, curve[10].Displacement, 1e-9)

	steps, err := st.LoadSteps(runID)
	require.NoError(t, err)
	require.Len(t, steps, 10)
	assert.Equal(t, 1, steps[0].Iterations)
	assert.Equal(t, 2, steps[9].Iterations)
	assert.Equal(t, 10, steps[9].Step)
}

func TestStoreSaveAborted(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := runPreset(t, "softening_spring", "load")
	runID, err := st.Save(cfg, res)
	require.NoError(t, err)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.True(t, meta.Aborted)
	assert.Contains(t, meta.StopMessage, "step 6")
	assert.Equal(t, 5, meta.Steps)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Latest()
	assert.Error(t, err)

	cfg, res := runPreset(t, "spring", "single")
	first, err := st.Save(cfg, res)
	require.NoError(t, err)
	second, err := st.Save(cfg, res)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "not-a-run"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)

	latest, err := st.Latest()
	require.NoError(t, err)
	assert.Equal(t, second, latest.ID)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	cfg, res := runPreset(t, "spring", "single")
	runID, err := st.Save(cfg, res)
	require.NoError(t, err)

	for _, name := range []string{metadataFile, curveFile, stepsFile} {
		_, err := os.Stat(filepath.Join(dir, runID, name))
		assert.NoError(t, err, name)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := runPreset(t, "spring", "stepped")
	runID, err := st.Save(cfg, res)
	require.NoError(t, err)

	data, err := st.LoadExportData(runID)
	require.NoError(t, err)
	live := NewExportData(cfg.Model, cfg.Solver, cfg.Control, res)
	assert.Equal(t, live.Iterations, data.Iterations)
	assert.Len(t, data.Curve, len(live.Curve))

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded ExportData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, runID, decoded.ID)
	assert.Equal(t, 10, decoded.Steps)
	assert.InDelta(t, 0.5, decoded.Curve[10].Displacement, 1e-9)
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg, res := runPreset(t, "spring", "stepped")
	runID, err := st.Save(cfg, res)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "curve.csv")
	require.NoError(t, st.ExportCSV(runID, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	curve, err := ReadCurve(f)
	require.NoError(t, err)
	assert.Len(t, curve, 11)
}

func TestReadCurveRejectsBadRows(t *testing.T) {
	_, err := ReadCurve(bytes.NewBufferString("step,load_factor,displacement\n1,x,0\n"))
	assert.Error(t, err)

	_, err = ReadCurve(bytes.NewBufferString("step,load_factor\n1,0\n"))
	assert.Error(t, err)
}
