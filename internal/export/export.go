// Package export writes the attendance table to CSV or Excel files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"smartattendance/internal/attendance"
	"smartattendance/internal/metrics"
)

// SheetName is the worksheet used for .xlsx exports.
const SheetName = "Attendance"

// Header is the first row of every export.
var Header = []string{"ID", "Student Name", "Date", "Status"}

// RecordSource lists every stored record in id order.
type RecordSource interface {
	All(ctx context.Context) ([]attendance.Record, error)
}

// Exporter dumps a RecordSource to files.
type Exporter struct {
	src     RecordSource
	metrics *metrics.Metrics
}

// New creates an exporter. m may be nil.
func New(src RecordSource, m *metrics.Metrics) *Exporter {
	return &Exporter{src: src, metrics: m}
}

// ToFile writes every record to dest, replacing any existing file. Paths
// ending in .xlsx produce a workbook; anything else is written as CSV.
// The store is read before dest is touched, so a failed read leaves an
// existing file intact.
func (e *Exporter) ToFile(ctx context.Context, dest string) (int, error) {
	recs, err := e.src.All(ctx)
	if err != nil {
		return 0, err
	}

	if strings.EqualFold(filepath.Ext(dest), ".xlsx") {
		err = writeXLSX(dest, recs)
	} else {
		err = writeCSVFile(dest, recs)
	}
	if err != nil {
		return 0, err
	}
	e.metrics.Exported(len(recs))
	return len(recs), nil
}

// writeCSV writes the header followed by one row per record.
func writeCSV(w io.Writer, recs []attendance.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("writing csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func writeCSVFile(dest string, recs []attendance.Record) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := writeCSV(f, recs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

func writeXLSX(dest string, recs []attendance.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	f.SetColWidth(SheetName, "A", "A", 8)
	f.SetColWidth(SheetName, "B", "B", 28)
	f.SetColWidth(SheetName, "C", "D", 12)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	f.SetCellStyle(SheetName, "A1", "D1", headerStyle)

	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{r.ID, r.StudentName, r.Date, string(r.Status)}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", r.ID, err)
		}
	}

	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("saving %s: %w", dest, err)
	}
	return nil
}

func row(r attendance.Record) []string {
	return []string{strconv.FormatInt(r.ID, 10), r.StudentName, r.Date, string(r.Status)}
}
