package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/nlsolve/internal/config"
	"github.com/san-kum/nlsolve/internal/nonlinear"
)

const (
	metadataFile = "metadata.json"
	curveFile    = "curve.csv"
	stepsFile    = "steps.csv"
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

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Solver      string             `json:"solver"`
	Control     string             `json:"control"`
	LoadFactor  float64            `json:"load_factor"`
	Steps       int                `json:"steps"`
	Iterations  int                `json:"iterations"`
	Aborted     bool               `json:"aborted"`
	StopMessage string             `json:"stop_message,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config"`
}

// Save writes a run directory holding metadata.json, curve.csv and
// steps.csv and returns the run ID.
func (s *Store) Save(cfg *config.Config, result *nonlinear.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Model, uuid.Must(uuid.NewV7()).String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Model:       cfg.Model,
		Timestamp:   time.Now(),
		Solver:      cfg.Solver,
		Control:     cfg.Control,
		LoadFactor:  result.LoadFactor,
		Steps:       len(result.Steps),
		Iterations:  result.TotalIterations,
		Aborted:     result.Aborted,
		StopMessage: result.StopMessage,
		Metrics:     result.Metrics,
		Config:      cfg,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, curveFile), func(f *os.File) error {
		return WriteCurve(f, result.Curve)
	}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, stepsFile), func(f *os.File) error {
		return WriteSteps(f, result.Steps)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadCurve(runID string) ([]nonlinear.CurvePoint, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, curveFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCurve(f)
}

func (s *Store) LoadSteps(runID string) ([]StepRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSteps(f)
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs in %s", s.baseDir)
	}
	return &runs[len(runs)-1], nil
}
