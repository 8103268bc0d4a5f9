package vocab

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/example/wordbook/internal/worker"
)

// Enricher looks up the translation and phonetic transcription of a headword
type Enricher interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	Transcribe(ctx context.Context, word string) (string, error)
}

// BatchOptions controls enrichment during BatchAdd
type BatchOptions struct {
	Enricher       Enricher // nil skips enrichment
	TargetLanguage string
	Workers        int
}

// BatchResult summarizes a batch add
type BatchResult struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`           // duplicates
	Invalid []string `json:"invalid,omitempty"` // non-alphabetic tokens
	Failed  []string `json:"failed,omitempty"`  // added, but a lookup failed
	Lookups []string `json:"lookup_errors,omitempty"`
}

// SplitBatch splits raw input on commas and newlines and trims each token.
// Empty tokens are dropped.
func SplitBatch(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// IsAlphabetic reports whether token is an English word or phrase: ASCII
// letters with optional spaces, hyphens and apostrophes, and at least one letter.
func IsAlphabetic(token string) bool {
	letters := 0
	for _, r := range token {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		case r == ' ' || r == '-' || r == '\'':
		default:
			return false
		}
	}
	return letters > 0
}

type enrichment struct {
	translation string
	phonetic    string
	done        bool
	err         error
}

// BatchAdd adds every valid token of raw to the owner's notebook. Duplicates
// are counted as skipped. Lookups are best-effort: a failed lookup leaves the
// field empty and the word is still added.
func (s *Store) BatchAdd(ctx context.Context, owner, notebook, raw string, opts BatchOptions) BatchResult {
	var result BatchResult

	// Decide which tokens will be inserted before spending lookups on them.
	seen := make(map[string]bool)
	var pending []string
	for _, token := range SplitBatch(raw) {
		if !IsAlphabetic(token) {
			result.Invalid = append(result.Invalid, token)
			continue
		}
		norm := strings.ToLower(token)
		if seen[norm] || s.Contains(owner, notebook, token) {
			result.Skipped++
			continue
		}
		seen[norm] = true
		pending = append(pending, token)
	}

	enriched := make([]enrichment, len(pending))
	if opts.Enricher != nil && len(pending) > 0 {
		pool := worker.NewPool(opts.Workers, len(pending))
		pool.Start(ctx)
		for i, token := range pending {
			i, token := i, token
			err := pool.Submit(func(ctx context.Context) error {
				enriched[i] = enrich(ctx, opts.Enricher, token, opts.TargetLanguage)
				return enriched[i].err
			})
			if err != nil {
				enriched[i].err = err
			}
		}
		pool.Close()
		for _, err := range pool.Errors() {
			log.Printf("Batch lookup failed: %v", err)
			result.Lookups = append(result.Lookups, err.Error())
		}
		sort.Strings(result.Lookups)
	}

	for i, token := range pending {
		e := enriched[i]
		if _, err := s.Add(owner, notebook, token, e.translation, e.phonetic); err != nil {
			if IsDuplicate(err) {
				result.Skipped++
				continue
			}
			log.Printf("Batch add of %q failed: %v", token, err)
			result.Invalid = append(result.Invalid, token)
			continue
		}
		result.Added++
		if opts.Enricher != nil && (!e.done || e.err != nil) {
			result.Failed = append(result.Failed, token)
		}
	}
	return result
}

// enrich runs both lookups for word. Each failure is reported as an
// *EnrichmentError in the joined err.
func enrich(ctx context.Context, en Enricher, word, lang string) enrichment {
	e := enrichment{done: true}
	if err := ctx.Err(); err != nil {
		e.err = &EnrichmentError{Field: "translation", Headword: word, Err: err}
		return e
	}
	var errs []error
	translation, err := en.Translate(ctx, word, lang)
	if err != nil {
		errs = append(errs, &EnrichmentError{Field: "translation", Headword: word, Err: err})
	} else {
		e.translation = translation
	}
	phonetic, err := en.Transcribe(ctx, word)
	if err != nil {
		errs = append(errs, &EnrichmentError{Field: "phonetic", Headword: word, Err: err})
	} else {
		e.phonetic = phonetic
	}
	e.err = errors.Join(errs...)
	return e
}
