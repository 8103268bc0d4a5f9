package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/wordbook/pkg/models"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

// Format is a download format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ExportHeader is the column layout of spreadsheet exports
var ExportHeader = []string{"headword", "phonetic", "translation", "notebook", "date"}

// ParseFormat accepts "xlsx", "csv" or "json" in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatXLSX, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FileName builds a download name such as "daily-words-20240102.xlsx"
func FileName(notebook string, format Format, t time.Time) string {
	base := slug.Make(notebook)
	if base == "" {
		base = "vocabulary"
	}
	return fmt.Sprintf("%s-%s.%s", base, t.Format("20060102"), format)
}

// Export writes records to w in the given format
func Export(w io.Writer, format Format, records []models.WordRecord) error {
	switch format {
	case FormatXLSX:
		return ExportXLSX(w, records)
	case FormatCSV:
		return ExportCSV(w, records)
	case FormatJSON:
		return ExportJSON(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportXLSX writes records into the first sheet of a new workbook
func ExportXLSX(w io.Writer, records []models.WordRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := ExportHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %v", i+2, err)
		}
		row := exportRow(rec)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %v", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %v", err)
	}
	return nil
}

// ExportCSV writes records as CSV with a header row
func ExportCSV(w io.Writer, records []models.WordRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(rec)); err != nil {
			return fmt.Errorf("failed to write row: %v", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes records as an indented JSON array
func ExportJSON(w io.Writer, records []models.WordRecord) error {
	if records == nil {
		records = []models.WordRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func exportRow(rec models.WordRecord) []string {
	return []string{rec.Headword, rec.Phonetic, rec.Translation, rec.Notebook, rec.CreatedDate}
}
