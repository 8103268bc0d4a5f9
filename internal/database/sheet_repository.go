package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sheetColumns is the number of cells in every sheet row
const sheetColumns = 6

// insertBatchSize keeps bulk inserts below SQLite's bound-variable limit
const insertBatchSize = 500

type sheetRow struct {
	RowIndex    int    `db:"row_index"`
	Owner       string `db:"owner"`
	Notebook    string `db:"notebook"`
	Headword    string `db:"headword"`
	Phonetic    string `db:"phonetic"`
	Translation string `db:"translation"`
	CreatedDate string `db:"created_date"`
}

func (r sheetRow) cells() []string {
	return []string{r.Owner, r.Notebook, r.Headword, r.Phonetic, r.Translation, r.CreatedDate}
}

func rowFromCells(index int, cells []string) (sheetRow, error) {
	if len(cells) > sheetColumns {
		return sheetRow{}, fmt.Errorf("row %d has %d cells, expected at most %d", index, len(cells), sheetColumns)
	}
	padded := make([]string, sheetColumns)
	copy(padded, cells)
	return sheetRow{
		RowIndex:    index,
		Owner:       padded[0],
		Notebook:    padded[1],
		Headword:    padded[2],
		Phonetic:    padded[3],
		Translation: padded[4],
		CreatedDate: padded[5],
	}, nil
}

// SheetRepository stores the vocabulary table as ordered rows of strings.
// It offers only whole-table reads and writes; callers own merge policy.
type SheetRepository struct {
	db *sqlx.DB
}

// NewSheetRepository creates a new repository instance
func NewSheetRepository(db *sqlx.DB) *SheetRepository {
	return &SheetRepository{db: db}
}

// ReadAllRows returns every row, header included, in row order
func (r *SheetRepository) ReadAllRows(ctx context.Context) ([][]string, error) {
	var rows []sheetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT row_index, owner, notebook, headword, phonetic, translation, created_date
		FROM sheet_rows
		ORDER BY row_index
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.cells())
	}
	return out, nil
}

// Clear removes every row
func (r *SheetRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sheet_rows"); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}
	return nil
}

// WriteAllRows appends rows after the existing ones. Saving a table is
// Clear followed by WriteAllRows.
func (r *SheetRepository) WriteAllRows(ctx context.Context, cells [][]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(row_index) + 1, 0) FROM sheet_rows")
	if err != nil {
		return fmt.Errorf("failed to read row count: %w", err)
	}

	rows := make([]sheetRow, 0, len(cells))
	for i, c := range cells {
		row, err := rowFromCells(next+i, c)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	const insert = `
		INSERT INTO sheet_rows (row_index, owner, notebook, headword, phonetic, translation, created_date)
		VALUES (:row_index, :owner, :notebook, :headword, :phonetic, :translation, :created_date)
	`
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExecContext(ctx, insert, rows[start:end]); err != nil {
			return fmt.Errorf("failed to write sheet rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheet rows: %w", err)
	}
	return nil
}

// Count returns the number of rows, header included
func (r *SheetRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sheet_rows"); err != nil {
		return 0, fmt.Errorf("failed to count sheet rows: %w", err)
	}
	return n, nil
}
