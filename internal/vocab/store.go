package vocab

import (
	"strings"
	"time"

	"github.com/example/wordbook/pkg/models"
)

// DateLayout is the layout of WordRecord.CreatedDate
const DateLayout = "2006-01-02"

// Filter selects the notebook(s) a query covers
type Filter struct {
	all      bool
	notebook string
}

// All matches every notebook of the owner
func All() Filter { return Filter{all: true} }

// In matches a single notebook
func In(notebook string) Filter { return Filter{notebook: strings.TrimSpace(notebook)} }

// IsAll reports whether the filter covers every notebook
func (f Filter) IsAll() bool { return f.all }

// Notebook returns the selected notebook name, empty for All
func (f Filter) Notebook() string { return f.notebook }

func (f Filter) match(r models.WordRecord) bool {
	return f.all || r.Notebook == f.notebook
}

// Store is the in-memory vocabulary table. Records are kept in creation
// order; Query returns them newest first.
//
// Store is not safe for concurrent use; the session serializes access.
type Store struct {
	records []models.WordRecord
	index   map[models.RecordKey]int
	dirty   bool
	now     func() time.Time
}

// NewStore creates a store holding the given records
func NewStore(records []models.WordRecord) *Store {
	s := &Store{now: time.Now}
	s.Replace(records)
	return s
}

// SetClock overrides the clock used for CreatedDate
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Replace swaps the whole table, e.g. after a remote load. The store is clean afterwards.
// Rows repeating an earlier key are dropped.
func (s *Store) Replace(records []models.WordRecord) {
	s.records = make([]models.WordRecord, 0, len(records))
	s.index = make(map[models.RecordKey]int, len(records))
	for _, r := range records {
		if _, exists := s.index[r.Key()]; exists {
			continue
		}
		s.index[r.Key()] = len(s.records)
		s.records = append(s.records, r)
	}
	s.dirty = false
}

// Add appends a new record unless the headword already exists in the owner's notebook
func (s *Store) Add(owner, notebook, headword, translation, phonetic string) (models.WordRecord, error) {
	rec := models.WordRecord{
		Owner:       strings.TrimSpace(owner),
		Notebook:    strings.TrimSpace(notebook),
		Headword:    strings.TrimSpace(headword),
		Phonetic:    strings.TrimSpace(phonetic),
		Translation: strings.TrimSpace(translation),
		CreatedDate: s.now().Format(DateLayout),
	}
	if err := s.Insert(rec); err != nil {
		return models.WordRecord{}, err
	}
	return rec, nil
}

// Insert appends a fully populated record, keeping its CreatedDate
func (s *Store) Insert(rec models.WordRecord) error {
	if rec.Owner == "" || rec.Notebook == "" || rec.Headword == "" {
		return ErrInvalidRecord
	}
	if s.Contains(rec.Owner, rec.Notebook, rec.Headword) {
		return &DuplicateError{Owner: rec.Owner, Notebook: rec.Notebook, Headword: rec.Headword}
	}
	s.index[rec.Key()] = len(s.records)
	s.records = append(s.records, rec)
	s.dirty = true
	return nil
}

// Contains reports whether the headword exists in the owner's notebook
func (s *Store) Contains(owner, notebook, headword string) bool {
	_, ok := s.index[models.KeyOf(owner, notebook, headword)]
	return ok
}

// Delete removes the matching record and returns the number of rows removed
func (s *Store) Delete(owner, notebook, headword string) int {
	key := models.KeyOf(owner, notebook, headword)
	return s.removeWhere(func(r models.WordRecord) bool {
		return r.Key() == key
	})
}

// DeleteNotebook removes every record of the owner's notebook
func (s *Store) DeleteNotebook(owner, notebook string) int {
	owner = strings.TrimSpace(owner)
	notebook = strings.TrimSpace(notebook)
	return s.removeWhere(func(r models.WordRecord) bool {
		return r.Owner == owner && r.Notebook == notebook
	})
}

// RenameNotebook moves every record of the owner's notebook to newName.
// Nothing changes if a moved headword already exists under newName.
func (s *Store) RenameNotebook(owner, oldName, newName string) (int, error) {
	owner = strings.TrimSpace(owner)
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return 0, nil
	}

	var moved []int
	for i, r := range s.records {
		if r.Owner != owner || r.Notebook != oldName {
			continue
		}
		if s.Contains(owner, newName, r.Headword) {
			return 0, &DuplicateError{Owner: owner, Notebook: newName, Headword: r.Headword}
		}
		moved = append(moved, i)
	}
	for _, i := range moved {
		delete(s.index, s.records[i].Key())
		s.records[i].Notebook = newName
		s.index[s.records[i].Key()] = i
	}
	if len(moved) > 0 {
		s.dirty = true
	}
	return len(moved), nil
}

// Query returns the owner's records matching the filter, most recently added first
func (s *Store) Query(owner string, f Filter) []models.WordRecord {
	owner = strings.TrimSpace(owner)
	out := make([]models.WordRecord, 0)
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.Owner == owner && f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Notebooks returns the distinct notebook names of the owner in first-seen order
func (s *Store) Notebooks(owner string) []string {
	owner = strings.TrimSpace(owner)
	seen := make(map[string]bool)
	var names []string
	for _, r := range s.records {
		if r.Owner == owner && !seen[r.Notebook] {
			seen[r.Notebook] = true
			names = append(names, r.Notebook)
		}
	}
	return names
}

// Records returns a copy of every record in creation order
func (s *Store) Records() []models.WordRecord {
	out := make([]models.WordRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records across all owners
func (s *Store) Len() int {
	return len(s.records)
}

// Dirty reports whether the table changed since the last Replace or MarkClean
func (s *Store) Dirty() bool {
	return s.dirty
}

// MarkClean is called once the table has been saved remotely
func (s *Store) MarkClean() {
	s.dirty = false
}

func (s *Store) removeWhere(match func(models.WordRecord) bool) int {
	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if match(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0
	}
	// clear the tail so removed records are not retained
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = models.WordRecord{}
	}
	s.records = kept
	s.reindex()
	s.dirty = true
	return removed
}

func (s *Store) reindex() {
	s.index = make(map[models.RecordKey]int, len(s.records))
	for i, r := range s.records {
		s.index[r.Key()] = i
	}
}
