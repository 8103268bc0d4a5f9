package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/example/wordbook/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	HeadwordColumn    string // Column with the English headword
	PhoneticColumn    string // Column with the transcription
	TranslationColumn string // Column with the translation
	NotebookColumn    string // Optional column with the notebook name
	SheetName         string // Sheet to import; empty selects the first sheet
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration.
// The layout matches the export: headword, phonetic, translation, notebook.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		HeadwordColumn:    "A",
		PhoneticColumn:    "B",
		TranslationColumn: "C",
		NotebookColumn:    "D",
		StartRow:          2,
	}
}

// ImportedWord is one row read from an import file
type ImportedWord struct {
	Headword    string
	Phonetic    string
	Translation string
	Notebook    string // empty when the file does not name one
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Words          []ImportedWord
	Errors         []string
}

// Import reads words from r; ext (".csv" or ".xlsx") selects the format
func Import(r io.Reader, ext string, config ImportConfig) (*ImportResult, error) {
	if strings.EqualFold(strings.TrimPrefix(ext, "."), "csv") {
		return importFromCSV(r, config)
	}
	return importFromExcel(r, config)
}

// importFromExcel imports words from an Excel workbook
func importFromExcel(r io.Reader, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i < config.StartRow-1 || blank(row) {
			continue
		}
		result.TotalProcessed++
		if err := processRow(row, config, "", result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports words from a CSV file. A row holding only a first
// cell starts a new notebook section, e.g. "Fruit,,".
func importFromCSV(r io.Reader, config ImportConfig) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &ImportResult{}
	rowNum := 0
	section := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow || blank(row) {
			continue
		}

		if name, ok := sectionHeader(row); ok {
			section = name
			continue
		}

		result.TotalProcessed++
		if err := processRow(row, config, section, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// processRow extracts one word from a row using the configured columns
func processRow(row []string, config ImportConfig, section string, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	word := ImportedWord{
		Headword:    cleanWord(cell(config.HeadwordColumn)),
		Phonetic:    models.BracketPhonetic(cell(config.PhoneticColumn)),
		Translation: cell(config.TranslationColumn),
		Notebook:    cell(config.NotebookColumn),
	}
	if word.Notebook == "" {
		word.Notebook = section
	}

	if word.Headword == "" {
		return fmt.Errorf("headword cannot be empty")
	}

	result.Words = append(result.Words, word)
	return nil
}

// sectionHeader reports whether row names a notebook section
func sectionHeader(row []string) (string, bool) {
	name := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if name == "" {
		return "", false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return "", false
		}
	}
	return name, len(row) > 1
}

// cleanWord removes trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
