package notebook

import (
	"testing"

	"github.com/example/wordbook/internal/vocab"
)

func newRegistry(t *testing.T) (*Registry, *vocab.Store) {
	t.Helper()
	s := vocab.NewStore(nil)
	return NewRegistry(s, "My Words", "Mistakes"), s
}

func TestListAlwaysHasDefaultAndMistakes(t *testing.T) {
	r, _ := newRegistry(t)
	got := r.List("kevin")
	if len(got) != 2 || got[0] != "My Words" || got[1] != "Mistakes" {
		t.Fatalf("unexpected notebooks: %v", got)
	}
}

func TestListOrder(t *testing.T) {
	r, s := newRegistry(t)
	for _, nb := range []string{"Mistakes", "Travel", "My Words", "Food", "Travel"} {
		if _, err := s.Add("kevin", nb, "w-"+nb, "", ""); err != nil && !vocab.IsDuplicate(err) {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := s.Add("amy", "Secret", "x", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := r.List("kevin")
	want := []string{"My Words", "Travel", "Food", "Mistakes"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMistakeNotebookIsProtected(t *testing.T) {
	r, s := newRegistry(t)
	if _, err := s.Add("kevin", "Mistakes", "valve", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add("kevin", "Travel", "ticket", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := r.Delete("kevin", " Mistakes "); err != ErrReservedNotebook {
		t.Fatalf("expected ErrReservedNotebook on delete, got %v", err)
	}
	if _, err := r.Rename("kevin", "Mistakes", "Old"); err != ErrReservedNotebook {
		t.Fatalf("expected ErrReservedNotebook on rename, got %v", err)
	}
	if _, err := r.Rename("kevin", "Travel", "Mistakes"); err != ErrReservedNotebook {
		t.Fatalf("expected ErrReservedNotebook on rename onto mistakes, got %v", err)
	}
	if len(s.Query("kevin", vocab.In("Mistakes"))) != 1 {
		t.Fatalf("mistake notebook must be untouched")
	}
}

func TestRenameAndDeleteDelegate(t *testing.T) {
	r, s := newRegistry(t)
	if _, err := s.Add("kevin", "Travel", "ticket", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	n, err := r.Rename("kevin", "Travel", "Trips")
	if err != nil || n != 1 {
		t.Fatalf("rename: %d, %v", n, err)
	}
	n, err = r.Delete("kevin", "Trips")
	if err != nil || n != 1 {
		t.Fatalf("delete: %d, %v", n, err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}
