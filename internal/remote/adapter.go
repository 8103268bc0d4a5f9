// Package remote keeps the local vocabulary table in step with the remote
// sheet.
//
// Saving is a whole-table overwrite: the sheet is cleared and every local row
// is written back. There is no row-level merge and no concurrency check, so
// when two sessions save the same sheet the last writer wins. A failed save
// leaves the local table ahead of the remote one until the next successful
// save; nothing is rolled back.
package remote

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/example/wordbook/pkg/models"
)

// Sheet is the remote tabular store
type Sheet interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
	Clear(ctx context.Context) error
	WriteAllRows(ctx context.Context, rows [][]string) error
}

// UnavailableError wraps a failed remote round trip
type UnavailableError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remote store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Options configures an Adapter
type Options struct {
	CacheTTL time.Duration // how long a loaded table may be served from memory
	Timeout  time.Duration // hard limit for each remote call, 0 disables
}

// Adapter reads and writes the whole vocabulary table
type Adapter struct {
	sheet Sheet
	opts  Options
	now   func() time.Time

	mu       sync.Mutex
	cached   []models.WordRecord
	cachedAt time.Time
	valid    bool
}

// NewAdapter creates an adapter over the given sheet
func NewAdapter(sheet Sheet, opts Options) *Adapter {
	return &Adapter{sheet: sheet, opts: opts, now: time.Now}
}

// Load returns the remote table. A copy loaded within CacheTTL is served
// without a round trip. When the remote store cannot be read, Load returns an
// empty table together with an *UnavailableError.
func (a *Adapter) Load(ctx context.Context) ([]models.WordRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.valid && a.now().Sub(a.cachedAt) < a.opts.CacheTTL {
		return copyRecords(a.cached), nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.sheet.ReadAllRows(ctx)
	if err != nil {
		a.valid = false
		log.Printf("Remote load failed, continuing with an empty table: %v", err)
		return []models.WordRecord{}, &UnavailableError{Op: "load", Err: err}
	}

	records := ParseRows(rows)
	a.cached = records
	a.cachedAt = a.now()
	a.valid = true
	return copyRecords(records), nil
}

// Save overwrites the remote table with records
func (a *Adapter) Save(ctx context.Context, records []models.WordRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.valid = false

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.sheet.Clear(ctx); err != nil {
		return &UnavailableError{Op: "save", Err: err}
	}
	if err := a.sheet.WriteAllRows(ctx, FormatRows(records)); err != nil {
		return &UnavailableError{Op: "save", Err: err}
	}

	a.cached = copyRecords(records)
	a.cachedAt = a.now()
	a.valid = true
	return nil
}

// Invalidate drops the cached table; the next Load goes to the remote store
func (a *Adapter) Invalidate() {
	a.mu.Lock()
	a.valid = false
	a.mu.Unlock()
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.Timeout)
}

// FormatRows renders the header row followed by one row per record
func FormatRows(records []models.WordRecord) [][]string {
	rows := make([][]string, 0, len(records)+1)
	header := make([]string, len(models.SheetHeader))
	copy(header, models.SheetHeader)
	rows = append(rows, header)
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return rows
}

// ParseRows converts sheet rows into records. A leading header row and
// blank rows are skipped.
func ParseRows(rows [][]string) []models.WordRecord {
	records := make([]models.WordRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		rec := models.RecordFromRow(row)
		if rec == (models.WordRecord{}) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func isHeader(row []string) bool {
	if len(row) < len(models.SheetHeader) {
		return false
	}
	for i, h := range models.SheetHeader {
		if !strings.EqualFold(strings.TrimSpace(row[i]), h) {
			return false
		}
	}
	return true
}

func copyRecords(in []models.WordRecord) []models.WordRecord {
	out := make([]models.WordRecord, len(in))
	copy(out, in)
	return out
}
