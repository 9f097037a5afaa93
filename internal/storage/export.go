package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

type ExportPoint struct {
	LoadFactor   float64 `json:"load_factor"`
	Displacement float64 `json:"displacement"`
}

type ExportData struct {
	ID          string             `json:"id,omitempty"`
	Model       string             `json:"model"`
	Solver      string             `json:"solver"`
	Control     string             `json:"control"`
	LoadFactor  float64            `json:"load_factor"`
	Steps       int                `json:"steps"`
	Aborted     bool               `json:"aborted"`
	StopMessage string             `json:"stop_message,omitempty"`
	Curve       []ExportPoint      `json:"curve"`
	Iterations  []int              `json:"iterations,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewExportData builds the export from a live result.
func NewExportData(model, solver, control string, result *nonlinear.Result) ExportData {
	data := ExportData{
		Model:       model,
		Solver:      solver,
		Control:     control,
		LoadFactor:  result.LoadFactor,
		Steps:       len(result.Steps),
		Aborted:     result.Aborted,
		StopMessage: result.StopMessage,
		Curve:       toExportCurve(result.Curve),
		Iterations:  make([]int, len(result.Steps)),
		Metrics:     result.Metrics,
	}
	for i, s := range result.Steps {
		data.Iterations[i] = s.History().Len()
	}
	return data
}

// LoadExportData rebuilds the export of a stored run.
func (s *Store) LoadExportData(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	curve, err := s.LoadCurve(runID)
	if err != nil {
		return ExportData{}, err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return ExportData{}, err
	}

	data := ExportData{
		ID:          meta.ID,
		Model:       meta.Model,
		Solver:      meta.Solver,
		Control:     meta.Control,
		LoadFactor:  meta.LoadFactor,
		Steps:       meta.Steps,
		Aborted:     meta.Aborted,
		StopMessage: meta.StopMessage,
		Curve:       toExportCurve(curve),
		Iterations:  make([]int, len(steps)),
		Metrics:     meta.Metrics,
	}
	for i, st := range steps {
		data.Iterations[i] = st.Iterations
	}
	return data, nil
}

func toExportCurve(curve []nonlinear.CurvePoint) []ExportPoint {
	out := make([]ExportPoint, len(curve))
	for i, pt := range curve {
		out[i] = ExportPoint{LoadFactor: pt.LoadFactor, Displacement: pt.Displacement}
	}
	return out
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes data to path, or to stdout when path is "-".
func ExportJSON(path string, data ExportData) error {
	if path == "-" {
		return WriteJSON(os.Stdout, data)
	}
	return writeFile(path, func(f *os.File) error {
		return WriteJSON(f, data)
	})
}

// ExportCSV copies a stored run's curve to path, or to stdout when path
// is "-".
func (s *Store) ExportCSV(runID, path string) error {
	curve, err := s.LoadCurve(runID)
	if err != nil {
		return err
	}
	if path == "-" {
		return WriteCurve(os.Stdout, curve)
	}
	return writeFile(path, func(f *os.File) error {
		return WriteCurve(f, curve)
	})
}
