// Package export renders charts and ledgers as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"worklog/internal/core"
	"worklog/internal/report"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// WriteChart writes one row per series with a column per month and a
// trailing row total, followed by a grand total row.
func WriteChart(w io.Writer, chart report.Chart, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Chart"
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return err
	}

	header := make([]any, 0, 14)
	header = append(header, title)
	for _, m := range chart.MonthLabels {
		header = append(header, m)
	}
	header = append(header, "Total")
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, s := range chart.Series {
		values := make([]any, 0, 14)
		values = append(values, s.Name)
		var total int64
		for _, v := range s.Data {
			values = append(values, v)
			total += v
		}
		values = append(values, total)
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, sheet, row, []any{"Grand total", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, chart.GrandTotal}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	return f.Write(w)
}

var ledgerHeader = map[core.Kind][]any{
	core.Income:  {"ID", "Date", "Company", "Tool", "Location", "Amount", "Overtime pay", "Tax", "Note"},
	core.Expense: {"ID", "Date", "Category", "Method", "Location", "Amount", "Tax", "Note"},
}

// WriteLedger writes the records of one collection in the given order.
func WriteLedger(w io.Writer, kind core.Kind, records []core.Record) error {
	header, ok := ledgerHeader[kind]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := kind.Collection()
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, sheet, i+2, ledgerRow(kind, r)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func ledgerRow(kind core.Kind, r core.Record) []any {
	if kind == core.Income {
		return []any{r.ID, r.Date, r.Company, r.Tool, r.Location, r.Amount.Int64(), r.Overtime.Int64(), r.Tax.Int64(), r.Note}
	}
	return []any{r.ID, r.Date, r.Category, r.Method, r.Location, r.Amount.Int64(), r.Tax.Int64(), r.Note}
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
