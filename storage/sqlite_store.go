package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pointage/attendance"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Repository = (*SQLiteStore)(nil)

const selectColumns = `id, matricule, name, grp, date, hours, created_at`

// Fixed-width UTC timestamps keep created_at sortable as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Records sharing a date come back grouped by team, then by worker.
const defaultOrder = ` ORDER BY date, grp, matricule, created_at`

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// (matricule, date) is deliberately not UNIQUE: record edits may produce
	// a second record for the same worker and day.
	const schema = `
CREATE TABLE IF NOT EXISTS pointages (
	id TEXT PRIMARY KEY,
	matricule TEXT NOT NULL,
	name TEXT NOT NULL,
	grp TEXT NOT NULL,
	date TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours > 0),
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pointages_date ON pointages(date);
CREATE INDEX IF NOT EXISTS idx_pointages_matricule ON pointages(matricule);
CREATE INDEX IF NOT EXISTS idx_pointages_created_at ON pointages(created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert stores a validated record. A missing ID gets a random UUID and a zero
// CreatedAt is set to the current time.
func (s *SQLiteStore) Insert(ctx context.Context, record attendance.Record) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now()
	}

	const insertStmt = `
INSERT INTO pointages (id, matricule, name, grp, date, hours, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`

	_, err := s.db.ExecContext(
		ctx,
		insertStmt,
		record.ID,
		record.Matricule,
		record.Name,
		record.Group,
		record.Date,
		record.Hours,
		formatTimestamp(record.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert pointage %s/%s: %w", record.Matricule, record.Date, err)
	}
	return record.ID, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]attendance.Record, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM pointages`+defaultOrder+`;`)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (attendance.Record, error) {
	return getRecord(ctx, s.db, id)
}

func (s *SQLiteStore) QueryRange(ctx context.Context, field, from, to string) ([]attendance.Record, error) {
	column, err := columnFor(field)
	if err != nil {
		return nil, err
	}

	conditions := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if from != "" {
		conditions = append(conditions, column+" >= ?")
		args = append(args, from)
	}
	if to != "" {
		conditions = append(conditions, column+" <= ?")
		args = append(args, to)
	}

	query := `SELECT ` + selectColumns + ` FROM pointages`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	return s.query(ctx, query+defaultOrder+`;`, args...)
}

func (s *SQLiteStore) QueryEqual(ctx context.Context, field, value string) ([]attendance.Record, error) {
	column, err := columnFor(field)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT `+selectColumns+` FROM pointages WHERE `+column+` = ?`+defaultOrder+`;`, value)
}

// Update applies patch to the stored record and returns the result.
func (s *SQLiteStore) Update(ctx context.Context, id string, patch attendance.Patch) (attendance.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("begin transaction: %w", err)
	}

	current, err := getRecord(ctx, tx, id)
	if err != nil {
		_ = tx.Rollback()
		return attendance.Record{}, err
	}
	updated, err := patch.Apply(current)
	if err != nil {
		_ = tx.Rollback()
		return attendance.Record{}, err
	}

	const updateStmt = `
UPDATE pointages
SET name = ?,
	grp = ?,
	date = ?,
	hours = ?
WHERE id = ?;`

	if _, err := tx.ExecContext(ctx, updateStmt, updated.Name, updated.Group, updated.Date, updated.Hours, id); err != nil {
		_ = tx.Rollback()
		return attendance.Record{}, fmt.Errorf("update pointage %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return attendance.Record{}, fmt.Errorf("commit update transaction: %w", err)
	}
	return updated, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pointages WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete pointage %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Latest returns up to limit records, most recently created first.
func (s *SQLiteStore) Latest(ctx context.Context, limit int) ([]attendance.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}
	return s.query(ctx, `SELECT `+selectColumns+` FROM pointages ORDER BY created_at DESC, rowid DESC LIMIT ?;`, limit)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func getRecord(ctx context.Context, db queryer, id string) (attendance.Record, error) {
	row := db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM pointages WHERE id = ?;`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("query pointage %s: %w", id, err)
	}
	return record, nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pointages: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0, 256)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pointage: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pointages: %w", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (attendance.Record, error) {
	var (
		record     attendance.Record
		createdRaw string
	)
	if err := row.Scan(
		&record.ID,
		&record.Matricule,
		&record.Name,
		&record.Group,
		&record.Date,
		&record.Hours,
		&createdRaw,
	); err != nil {
		return attendance.Record{}, err
	}

	createdAt, err := time.Parse(timestampLayout, createdRaw)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	record.CreatedAt = createdAt
	return record, nil
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(timestampLayout)
}
