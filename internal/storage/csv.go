package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/nlsolve/internal/nonlinear"
)

var (
	curveHeader = []string{"step", "load_factor", "displacement"}
	stepsHeader = []string{"step", "iterations", "load_factor", "displacement", "force_convergence", "displacement_convergence"}
)

// StepRecord is one row of steps.csv.
type StepRecord struct {
	Step                    int
	Iterations              int
	LoadFactor              float64
	Displacement            float64
	ForceConvergence        float64
	DisplacementConvergence float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// WriteCurve writes the load–displacement curve; row 0 is the origin.
func WriteCurve(w io.Writer, curve []nonlinear.CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(curveHeader); err != nil {
		return err
	}
	for i, pt := range curve {
		row := []string{strconv.Itoa(i), formatFloat(pt.LoadFactor), formatFloat(pt.Displacement)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSteps(w io.Writer, steps []*nonlinear.LoadStep) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stepsHeader); err != nil {
		return err
	}
	for _, s := range steps {
		final := s.FinalIteration()
		var u float64
		if s.Monitored != nil {
			u = s.Monitored.Displacement
		}
		row := []string{
			strconv.Itoa(s.Number),
			strconv.Itoa(s.History().Len()),
			formatFloat(s.LoadFactor),
			formatFloat(u),
			formatFloat(final.ForceConvergence),
			formatFloat(final.DisplacementConvergence),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRecords(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func ReadCurve(r io.Reader) ([]nonlinear.CurvePoint, error) {
	records, err := readRecords(r, curveHeader)
	if err != nil {
		return nil, err
	}

	curve := make([]nonlinear.CurvePoint, 0, len(records))
	for i, rec := range records {
		lf, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("curve row %d: %w", i+1, err)
		}
		u, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("curve row %d: %w", i+1, err)
		}
		curve = append(curve, nonlinear.CurvePoint{LoadFactor: lf, Displacement: u})
	}
	return curve, nil
}

func ReadSteps(r io.Reader) ([]StepRecord, error) {
	records, err := readRecords(r, stepsHeader)
	if err != nil {
		return nil, err
	}

	out := make([]StepRecord, 0, len(records))
	for i, rec := range records {
		var s StepRecord
		var errs [6]error
		s.Step, errs[0] = strconv.Atoi(rec[0])
		s.Iterations, errs[1] = strconv.Atoi(rec[1])
		s.LoadFactor, errs[2] = strconv.ParseFloat(rec[2], 64)
		s.Displacement, errs[3] = strconv.ParseFloat(rec[3], 64)
		s.ForceConvergence, errs[4] = strconv.ParseFloat(rec[4], 64)
		s.DisplacementConvergence, errs[5] = strconv.ParseFloat(rec[5], 64)
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("steps row %d: %w", i+1, err)
			}
		}
		out = append(out, s)
	}
	return out, nil
}
