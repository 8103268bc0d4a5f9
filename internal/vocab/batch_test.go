package vocab

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakeEnricher struct {
	mu        sync.Mutex
	failWords map[string]bool
	calls     int
}

func (f *fakeEnricher) Translate(ctx context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failWords[strings.ToLower(text)] {
		return "", errors.New("translation service down")
	}
	return text + "@" + lang, nil
}

func (f *fakeEnricher) Transcribe(ctx context.Context, word string) (string, error) {
	return "[" + strings.ToLower(word) + "]", nil
}

func TestBatchAddCounts(t *testing.T) {
	s := newTestStore(t)
	res := s.BatchAdd(context.Background(), "kevin", "A", "apple, banana, apple", BatchOptions{})
	if res.Added != 2 || res.Skipped != 1 {
		t.Fatalf("expected added=2 skipped=1, got %+v", res)
	}
	assertHeadwords(t, s.Query("kevin", All()), "banana", "apple")
}

func TestBatchAddSplitsAndFilters(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "kevin", "A", "valve")

	raw := "Valve\nice cream,  ,42,rock'n'roll\r\nwell-known, héllo,\n"
	res := s.BatchAdd(context.Background(), "kevin", "A", raw, BatchOptions{})
	if res.Added != 3 {
		t.Fatalf("expected 3 added, got %+v", res)
	}
	if res.Skipped != 1 {
		t.Fatalf("expected valve skipped as duplicate, got %+v", res)
	}
	if len(res.Invalid) != 2 || res.Invalid[0] != "42" || res.Invalid[1] != "héllo" {
		t.Fatalf("unexpected invalid tokens: %v", res.Invalid)
	}
	assertHeadwords(t, s.Query("kevin", In("A")), "well-known", "rock'n'roll", "ice cream", "valve")
}

func TestBatchAddEnrichmentIsBestEffort(t *testing.T) {
	s := newTestStore(t)
	en := &fakeEnricher{failWords: map[string]bool{"banana": true}}
	res := s.BatchAdd(context.Background(), "kevin", "A", "apple,banana,cherry,apple", BatchOptions{
		Enricher:       en,
		TargetLanguage: "zh-TW",
		Workers:        3,
	})
	if res.Added != 3 || res.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.Failed) != 1 || res.Failed[0] != "banana" {
		t.Fatalf("expected banana in Failed, got %v", res.Failed)
	}
	if en.calls != 3 {
		t.Fatalf("duplicates must not be looked up, got %d calls", en.calls)
	}
	if len(res.Lookups) != 1 || !strings.Contains(res.Lookups[0], `translation for "banana"`) {
		t.Fatalf("expected one translation failure for banana, got %v", res.Lookups)
	}

	recs := s.Query("kevin", All())
	assertHeadwords(t, recs, "cherry", "banana", "apple")
	if recs[2].Translation != "apple@zh-TW" || recs[2].Phonetic != "[apple]" {
		t.Fatalf("apple not enriched: %+v", recs[2])
	}
	if recs[1].Translation != "" || recs[1].Phonetic != "[banana]" {
		t.Fatalf("banana should keep an empty translation: %+v", recs[1])
	}
}

func TestEnrichJoinsLookupErrors(t *testing.T) {
	en := &brokenEnricher{}
	e := enrich(context.Background(), en, "apple", "zh-TW")
	var enrichErr *EnrichmentError
	if !errors.As(e.err, &enrichErr) {
		t.Fatalf("expected an EnrichmentError, got %v", e.err)
	}
	msg := e.err.Error()
	if !strings.Contains(msg, "translation") || !strings.Contains(msg, "phonetic") {
		t.Fatalf("both lookups should be reported, got %q", msg)
	}
	if e.translation != "" || e.phonetic != "" {
		t.Fatalf("failed lookups must leave fields empty: %+v", e)
	}
}

type brokenEnricher struct{}

func (brokenEnricher) Translate(ctx context.Context, text, lang string) (string, error) {
	return "", errors.New("quota exceeded")
}

func (brokenEnricher) Transcribe(ctx context.Context, word string) (string, error) {
	return "", errors.New("dictionary offline")
}

func TestIsAlphabetic(t *testing.T) {
	cases := map[string]bool{
		"apple":      true,
		"ice cream":  true,
		"well-known": true,
		"don't":      true,
		"":           false,
		"--":         false,
		"a1":         false,
		"蘋果":         false,
	}
	for in, want := range cases {
		if got := IsAlphabetic(in); got != want {
			t.Errorf("IsAlphabetic(%q) = %v, want %v", in, got, want)
		}
	}
}
