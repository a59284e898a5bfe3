package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"academy/internal/model"
)

// Format is a download encoding.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for an encoding other than CSV or XLSX.
var ErrUnknownFormat = errors.New("report: unknown format")

// ParseFormat validates a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// BOM prefixes CSV output so spreadsheet tools detect UTF-8.
const BOM = "\uFEFF"

// FileName is the download name, report_<type>_<YYYY-MM-DD>.<ext>.
func FileName(typ Type, now time.Time, f Format) string {
	return fmt.Sprintf("report_%s_%s.%s", typ, model.FormatDate(now), f)
}

// Encode writes t to w in format f.
func Encode(w io.Writer, t Table, f Format, delim rune) error {
	switch f {
	case CSV:
		return WriteCSV(w, t, delim)
	case XLSX:
		return WriteXLSX(w, t)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes the BOM, the header and one line per row. Values holding the
// delimiter, a quote or a line break are quoted with inner quotes doubled.
func WriteCSV(w io.Writer, t Table, delim rune) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t as a single-sheet workbook named after the report type.
// Integer-looking cells are stored as numbers.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := string(t.Type)
	if sheet == "" {
		sheet = "report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	if len(t.Rows) > 0 {
		if err := setRow(f, sheet, 1, stringsToCells(t.Header())); err != nil {
			return err
		}
		for i, r := range t.Rows {
			cells := make([]any, len(r))
			for j, field := range r {
				cells[j] = cellValue(field.Value)
			}
			if err := setRow(f, sheet, i+2, cells); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}

func stringsToCells(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func cellValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}
