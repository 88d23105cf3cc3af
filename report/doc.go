// Package report writes a calibration run to an XLSX workbook with three
// sheets: Summary, Instruments (target, fitted value, residual) and
// Parameters (initial and fitted value per object component).
package report
