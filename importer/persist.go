package importer

import (
	"context"
	"fmt"
	"time"

	"pointage/attendance"
	"pointage/internal/classify"
)

// Store is the subset of the repository an import needs.
type Store interface {
	All(ctx context.Context) ([]attendance.Record, error)
	Insert(ctx context.Context, record attendance.Record) (string, error)
}

type PersistResult struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// Persist inserts the records whose (matricule, date) is not stored yet.
// Inserts are not atomic: on failure the counts reached so far are returned
// together with the error.
func Persist(ctx context.Context, store Store, records []attendance.Record, now time.Time) (PersistResult, error) {
	existing, err := store.All(ctx)
	if err != nil {
		return PersistResult{}, fmt.Errorf("load existing records: %w", err)
	}

	toAdd, duplicates := classify.SplitNew(records, existing)
	result := PersistResult{Duplicates: len(duplicates)}
	for _, record := range toAdd {
		record.ID = ""
		record.CreatedAt = now
		if _, err := store.Insert(ctx, record); err != nil {
			return result, fmt.Errorf("insert record %s/%s: %w", record.Matricule, record.Date, err)
		}
		result.Added++
	}
	return result, nil
}
