package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/katalvlaran/lvcalib/calibration"
	"github.com/katalvlaran/lvcalib/model"
	"github.com/katalvlaran/lvcalib/product"
)

// Sheet names.
const (
	SheetSummary     = "Summary"
	SheetInstruments = "Instruments"
	SheetParameters  = "Parameters"
)

// ErrLengthMismatch indicates inputs that do not line up with the result.
var ErrLengthMismatch = errors.New("report: length mismatch")

// InstrumentRow is one priced quote.
type InstrumentRow struct {
	Label    string
	Target   float64
	Value    float64
	Residual float64
}

// ParameterRow is one component of a calibrated object.
type ParameterRow struct {
	Object  string
	Index   int
	Initial float64
	Fitted  float64
}

// Report is the tabular form of one calibration run.
type Report struct {
	Result      calibration.Result
	Instruments []InstrumentRow
	Parameters  []ParameterRow
}

// Build assembles a report from a finished run.
//
// Errors:
//   - ErrLengthMismatch when targets or res.Residuals do not match
//     instruments;
//   - model lookup errors when a calibrated object is missing from
//     calibrated.
func Build(res calibration.Result, instruments []product.Instrument, targets []float64,
	objects []model.ParameterObject, calibrated *model.Model) (*Report, error) {
	if len(targets) != len(instruments) || len(res.Residuals) != len(instruments) {
		return nil, fmt.Errorf("%w: %d instruments, %d targets, %d residuals",
			ErrLengthMismatch, len(instruments), len(targets), len(res.Residuals))
	}

	r := &Report{Result: res}
	for i, inst := range instruments {
		r.Instruments = append(r.Instruments, InstrumentRow{
			Label:    Label(inst),
			Target:   targets[i],
			Value:    targets[i] + res.Residuals[i],
			Residual: res.Residuals[i],
		})
	}
	for _, obj := range objects {
		fitted, err := calibrated.Object(obj.Name())
		if err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		after := fitted.Parameterized().Parameter()
		for i, v := range obj.Parameter() {
			r.Parameters = append(r.Parameters, ParameterRow{Object: obj.Name(), Index: i, Initial: v, Fitted: after[i]})
		}
	}

	return r, nil
}

// Label describes an instrument in one short line.
func Label(inst product.Instrument) string {
	switch v := inst.(type) {
	case product.ZeroCouponBond:
		return fmt.Sprintf("ZCB %s T=%g", v.DiscountCurve, v.Maturity)
	case product.ForwardRate:
		return fmt.Sprintf("Forward %s t=%g", v.ForwardCurve, v.Fixing)
	case product.ForwardRateAgreement:
		return fmt.Sprintf("FRA %s %g-%g K=%g", v.ForwardCurve, v.Fixing, v.Payment, v.Strike)
	case product.Caplet:
		return fmt.Sprintf("Caplet %s %g-%g K=%g", v.VolatilitySurface, v.Fixing, v.Payment, v.Strike)
	case product.ImpliedVolatility:
		return fmt.Sprintf("Vol %s T=%g K=%g", v.VolatilitySurface, v.Maturity, v.Strike)
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", inst), "*")
	}
}

// Write renders the workbook to w.
func (r *Report) Write(w io.Writer) error {
	f, err := r.workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.Write(w); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}

	return nil
}

// WriteFile saves the workbook to path.
func (r *Report) WriteFile(path string) error {
	f, err := r.workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}

	return nil
}

func (r *Report) workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("report: %w", err)
	}
	for _, name := range []string{SheetInstruments, SheetParameters} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("report: sheet %s: %w", name, err)
		}
	}

	res := r.Result
	rows := map[string][][]interface{}{
		SheetSummary: {
			{"Run", res.RunID.String()},
			{"Status", res.Status.String()},
			{"Iterations", res.Iterations},
			{"Accuracy", res.Accuracy},
			{"Evaluations", res.Evaluations},
			{"Duration", res.Duration.String()},
		},
		SheetInstruments: {{"#", "Instrument", "Target", "Value", "Residual"}},
		SheetParameters:  {{"Object", "Index", "Initial", "Fitted", "Change"}},
	}
	for i, in := range r.Instruments {
		rows[SheetInstruments] = append(rows[SheetInstruments],
			[]interface{}{i, in.Label, in.Target, in.Value, in.Residual})
	}
	for _, p := range r.Parameters {
		rows[SheetParameters] = append(rows[SheetParameters],
			[]interface{}{p.Object, p.Index, p.Initial, p.Fitted, p.Fitted - p.Initial})
	}

	for sheet, sheetRows := range rows {
		for i, row := range sheetRows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("report: %w", err)
			}
			row := row
			if err = f.SetSheetRow(sheet, cell, &row); err != nil {
				f.Close()
				return nil, fmt.Errorf("report: %s row %d: %w", sheet, i+1, err)
			}
		}
		if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
			f.Close()
			return nil, fmt.Errorf("report: %w", err)
		}
	}

	return f, nil
}
