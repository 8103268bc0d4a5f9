package models

import "strings"

// SheetHeader is the header row of the remote vocabulary table
var SheetHeader = []string{"owner", "notebook", "headword", "phonetic", "translation", "date"}

// WordRecord represents one vocabulary entry in a notebook
type WordRecord struct {
	Owner       string `json:"owner" db:"owner"`
	Notebook    string `json:"notebook" db:"notebook"`
	Headword    string `json:"headword" db:"headword"`
	Phonetic    string `json:"phonetic" db:"phonetic"`         // Bracketed transcription, may be empty
	Translation string `json:"translation" db:"translation"`   // Target-language meaning
	CreatedDate string `json:"created_date" db:"created_date"` // YYYY-MM-DD
}

// RecordKey identifies a record for the uniqueness rule
type RecordKey struct {
	Owner    string
	Notebook string
	Headword string
}

// Key returns the normalized uniqueness key of the record
func (w WordRecord) Key() RecordKey {
	return KeyOf(w.Owner, w.Notebook, w.Headword)
}

// KeyOf builds a uniqueness key from raw fields
func KeyOf(owner, notebook, headword string) RecordKey {
	return RecordKey{
		Owner:    strings.TrimSpace(owner),
		Notebook: strings.TrimSpace(notebook),
		Headword: NormalizeHeadword(headword),
	}
}

// NormalizeHeadword trims and lower-cases a headword for comparison
func NormalizeHeadword(headword string) string {
	return strings.ToLower(strings.TrimSpace(headword))
}

// Row renders the record in sheet column order
func (w WordRecord) Row() []string {
	return []string{w.Owner, w.Notebook, w.Headword, w.Phonetic, w.Translation, w.CreatedDate}
}

// RecordFromRow parses a sheet row. Missing trailing cells are treated as empty.
func RecordFromRow(row []string) WordRecord {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return WordRecord{
		Owner:       cell(0),
		Notebook:    cell(1),
		Headword:    cell(2),
		Phonetic:    cell(3),
		Translation: cell(4),
		CreatedDate: cell(5),
	}
}

// BracketPhonetic normalizes a transcription written as /.../ or [...] to [...]
func BracketPhonetic(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "/[] ")
	if s == "" {
		return ""
	}
	return "[" + s + "]"
}
