package notebook

import (
	"errors"
	"strings"

	"github.com/example/wordbook/internal/vocab"
)

// ErrReservedNotebook is returned when renaming or deleting the mistake
// notebook, or renaming another notebook onto its name.
var ErrReservedNotebook = errors.New("the mistake notebook is managed automatically")

// Registry derives an owner's notebooks from the word store. Notebooks are
// not stored on their own; naming one when adding a word creates it.
type Registry struct {
	store           *vocab.Store
	defaultNotebook string
	mistakeNotebook string
}

// NewRegistry creates a registry with the given default and mistake notebook names
func NewRegistry(store *vocab.Store, defaultNotebook, mistakeNotebook string) *Registry {
	return &Registry{
		store:           store,
		defaultNotebook: strings.TrimSpace(defaultNotebook),
		mistakeNotebook: strings.TrimSpace(mistakeNotebook),
	}
}

// Default returns the name of the default notebook
func (r *Registry) Default() string { return r.defaultNotebook }

// Mistakes returns the name of the mistake notebook
func (r *Registry) Mistakes() string { return r.mistakeNotebook }

// IsReserved reports whether name is the mistake notebook
func (r *Registry) IsReserved(name string) bool {
	return strings.TrimSpace(name) == r.mistakeNotebook
}

// List returns the owner's notebooks: the default notebook first, then the
// others in the order they were first used, and the mistake notebook last.
// The default and mistake notebooks are listed even when empty.
func (r *Registry) List(owner string) []string {
	names := []string{r.defaultNotebook}
	for _, name := range r.store.Notebooks(owner) {
		if name == r.defaultNotebook || name == r.mistakeNotebook {
			continue
		}
		names = append(names, name)
	}
	return append(names, r.mistakeNotebook)
}

// Rename moves every record of oldName to newName
func (r *Registry) Rename(owner, oldName, newName string) (int, error) {
	if r.IsReserved(oldName) || r.IsReserved(newName) {
		return 0, ErrReservedNotebook
	}
	return r.store.RenameNotebook(owner, oldName, newName)
}

// Delete removes every record of the notebook
func (r *Registry) Delete(owner, name string) (int, error) {
	if r.IsReserved(name) {
		return 0, ErrReservedNotebook
	}
	return r.store.DeleteNotebook(owner, name), nil
}
