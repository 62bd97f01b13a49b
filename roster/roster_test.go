package roster

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"pointage/attendance"
	"pointage/internal/timeutil"
	"pointage/storage"
)

func newTestService(t *testing.T, records ...attendance.Record) (*Service, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "roster_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for _, record := range records {
		if _, err := store.Insert(context.Background(), record); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}
	return NewService(store, zerolog.Nop()), store
}

func rec(matricule, name, group, date string, hours float64) attendance.Record {
	return attendance.Record{Matricule: matricule, Name: name, Group: group, Date: date, Hours: hours}
}

func TestService_ListAndSummary(t *testing.T) {
	t.Parallel()

	service, _ := newTestService(t,
		rec("A1", "Jean", "G1", "2025-01-01", 4),
		rec("A1", "Jean", "G1", "2025-01-02", 4),
		rec("A2", "Ana", "G2", "2025-01-01", 8),
		rec("A3", "Tom", "G2", "2025-02-01", 8),
	)
	ctx := context.Background()
	january := Filter{Period: timeutil.Range{From: "2025-01-01", To: "2025-01-31"}}

	records, err := service.List(ctx, january)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 january records, got %d", len(records))
	}

	summary, err := service.Summary(ctx, january)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalWorkers != 2 || summary.TotalHours != 16 || summary.Groups[0].Utilization != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	g2, err := service.List(ctx, Filter{Groups: []string{"G2"}})
	if err != nil {
		t.Fatalf("list by group: %v", err)
	}
	if len(g2) != 2 {
		t.Fatalf("expected 2 G2 records, got %d", len(g2))
	}
}

func TestService_AddSkipsDuplicates(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t, rec("A1", "Jean", "G1", "2025-01-01", 8))
	fixed := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	service.now = func() time.Time { return fixed }

	result, err := service.Add(context.Background(), []attendance.Record{
		rec("A1", "Jean", "G1", "2025-01-01", 8),
		rec("A1", "Jean", "G1", "2025-01-02", 8),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if result.Added != 1 || result.Duplicates != 1 {
		t.Fatalf("unexpected add result: %+v", result)
	}

	last, err := service.LastAdded(context.Background())
	if err != nil {
		t.Fatalf("last added: %v", err)
	}
	if last == nil || last.Date != "2025-01-02" || !last.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected last added record: %+v", last)
	}

	all, _ := store.All(context.Background())
	if len(all) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(all))
	}
}

func TestService_DeleteRange(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t,
		rec("A1", "Jean", "G1", "2025-01-01", 8),
		rec("A2", "Ana", "G1", "2025-01-15", 8),
		rec("A3", "Tom", "G1", "2025-01-16", 8),
	)
	ctx := context.Background()

	if _, err := service.DeleteRange(ctx, "2025-01-15", ""); !errors.Is(err, timeutil.ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}
	if _, err := service.DeleteRange(ctx, "2025-01-15", "2025-01-01"); !errors.Is(err, timeutil.ErrRangeOrder) {
		t.Fatalf("expected ErrRangeOrder, got %v", err)
	}

	deleted, err := service.DeleteRange(ctx, "2025-01-01", "2025-01-15")
	if err != nil {
		t.Fatalf("delete range: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted records, got %d", deleted)
	}
	remaining, _ := store.All(ctx)
	if len(remaining) != 1 || remaining[0].Matricule != "A3" {
		t.Fatalf("unexpected remaining records: %+v", remaining)
	}
}

func TestService_UpdateWorker(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t,
		rec("A1", "Jean", "G1", "2025-01-01", 8),
		rec("A1", "Jean", "G1", "2025-01-02", 8),
		rec("A2", "Ana", "G1", "2025-01-01", 8),
	)
	ctx := context.Background()

	name := "Jean Dupont"
	group := "G3"
	updated, err := service.UpdateWorker(ctx, "A1", &name, &group)
	if err != nil {
		t.Fatalf("update worker: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated records, got %d", updated)
	}

	records, _ := store.QueryEqual(ctx, attendance.FieldMatricule, "A1")
	for _, record := range records {
		if record.Name != name || record.Group != group {
			t.Fatalf("record not updated: %+v", record)
		}
	}
	other, _ := store.QueryEqual(ctx, attendance.FieldMatricule, "A2")
	if other[0].Group != "G1" {
		t.Fatalf("unrelated worker changed: %+v", other[0])
	}

	if _, err := service.UpdateWorker(ctx, "A1", nil, nil); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
	if _, err := service.UpdateWorker(ctx, "ZZ", &name, nil); !errors.Is(err, storage.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestService_UpdateAndDeleteRecord(t *testing.T) {
	t.Parallel()

	service, store := newTestService(t, rec("A1", "Jean", "G1", "2025-01-01", 8))
	ctx := context.Background()
	records, _ := store.All(ctx)
	id := records[0].ID

	if _, err := service.UpdateRecord(ctx, id, attendance.Patch{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}

	date := "2025-01-03"
	updated, err := service.UpdateRecord(ctx, id, attendance.Patch{Date: &date})
	if err != nil {
		t.Fatalf("update record: %v", err)
	}
	if updated.Date != date {
		t.Fatalf("unexpected updated record: %+v", updated)
	}

	if err := service.DeleteRecord(ctx, id); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	last, err := service.LastAdded(ctx)
	if err != nil || last != nil {
		t.Fatalf("expected empty store, got %+v (%v)", last, err)
	}
}

func TestSearchWorkers(t *testing.T) {
	t.Parallel()

	records := []attendance.Record{
		rec("B7", "Marie Curie", "G1", "2025-01-01", 4),
		rec("A1", "Jean", "G1", "2025-01-01", 4),
		rec("A1", "Jean", "G1", "2025-01-02", 4.5),
		rec("C3", "Paul", "G2", "2025-01-01", 8),
	}

	all := SearchWorkers(records, "")
	if len(all) != 3 || all[0].Matricule != "A1" || all[0].RecordCount != 2 || all[0].TotalHours != 8.5 {
		t.Fatalf("unexpected workers: %+v", all)
	}

	byName := SearchWorkers(records, "  CURIE ")
	if len(byName) != 1 || byName[0].Matricule != "B7" {
		t.Fatalf("expected case-insensitive name match, got %+v", byName)
	}

	byMatricule := SearchWorkers(records, "c3")
	if len(byMatricule) != 1 || byMatricule[0].Name != "Paul" {
		t.Fatalf("expected matricule match, got %+v", byMatricule)
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	workers := make([]Worker, 45)
	for i := range workers {
		workers[i] = Worker{Matricule: fmt.Sprintf("W%02d", i)}
	}

	first := Paginate(workers, 1, 0)
	if len(first.Workers) != WorkersPerPage || first.TotalPages != 3 || first.Total != 45 {
		t.Fatalf("unexpected first page: %+v", first)
	}

	last := Paginate(workers, 9, WorkersPerPage)
	if last.Page != 3 || len(last.Workers) != 5 || last.Workers[0].Matricule != "W40" {
		t.Fatalf("expected clamped last page, got page %d with %d workers", last.Page, len(last.Workers))
	}

	empty := Paginate(nil, 0, WorkersPerPage)
	if empty.Page != 1 || empty.TotalPages != 1 || len(empty.Workers) != 0 {
		t.Fatalf("unexpected empty page: %+v", empty)
	}
}
