package review

import (
	"strings"

	"github.com/example/wordbook/internal/vocab"
	"github.com/example/wordbook/pkg/models"
)

// MistakeRecorder collects missed words
type MistakeRecorder interface {
	Promote(rec models.WordRecord, owner string) bool
}

// Promoter copies missed words into the mistake notebook
type Promoter struct {
	store    *vocab.Store
	notebook string
}

// NewPromoter creates a promoter writing to the given mistake notebook
func NewPromoter(store *vocab.Store, mistakeNotebook string) *Promoter {
	return &Promoter{store: store, notebook: strings.TrimSpace(mistakeNotebook)}
}

// Promote inserts a copy of rec into the owner's mistake notebook. It returns
// false when the word is already there; the original record is never changed.
func (p *Promoter) Promote(rec models.WordRecord, owner string) bool {
	if p.store.Contains(owner, p.notebook, rec.Headword) {
		return false
	}
	mistake := rec
	mistake.Owner = strings.TrimSpace(owner)
	mistake.Notebook = p.notebook
	return p.store.Insert(mistake) == nil
}
