package stats

import (
	"testing"

	"pointage/attendance"
	"pointage/internal/timeutil"
)

func sampleRecords() []attendance.Record {
	return []attendance.Record{
		{Matricule: "A1", Name: "Jean", Group: "G1", Date: "2025-01-01", Hours: 4},
		{Matricule: "A1", Name: "Jean", Group: "G1", Date: "2025-01-02", Hours: 4},
		{Matricule: "A2", Name: "Ana", Group: "G2", Date: "2025-01-01", Hours: 8},
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary := Summarize(sampleRecords())
	if summary.TotalWorkers != 2 || summary.TotalDays != 2 || summary.TotalHours != 16 || summary.TotalGroups != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if len(summary.Groups) != 2 || summary.Groups[0].Group != "G1" {
		t.Fatalf("expected groups sorted by name, got %+v", summary.Groups)
	}

	g1 := summary.Groups[0]
	if g1.UniqueWorkers != 1 || g1.WorkingDays != 2 || g1.RecordCount != 2 || g1.TotalHours != 8 {
		t.Fatalf("unexpected G1 stats: %+v", g1)
	}
	if g1.Utilization != 50 {
		t.Fatalf("expected G1 utilization 50, got %v", g1.Utilization)
	}
	if summary.Groups[1].Utilization != 100 {
		t.Fatalf("expected G2 utilization 100, got %v", summary.Groups[1].Utilization)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	summary := Summarize(nil)
	if summary.TotalWorkers != 0 || summary.TotalHours != 0 || len(summary.Groups) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestSummarize_DecimalHours(t *testing.T) {
	t.Parallel()

	records := []attendance.Record{
		{Matricule: "A1", Group: "G1", Date: "2025-01-01", Hours: 0.1},
		{Matricule: "A1", Group: "G1", Date: "2025-01-02", Hours: 0.2},
	}
	if got := Summarize(records).TotalHours; got != 0.3 {
		t.Fatalf("expected 0.3 hours, got %v", got)
	}
}

func TestUtilization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hours   float64
		days    int
		workers int
		want    float64
	}{
		{name: "half", hours: 8, days: 2, workers: 1, want: 50},
		{name: "overtime clamps", hours: 30, days: 1, workers: 2, want: 100},
		{name: "no days", hours: 8, days: 0, workers: 1, want: 0},
		{name: "no workers", hours: 8, days: 1, workers: 0, want: 0},
		{name: "fraction", hours: 7, days: 3, workers: 1, want: 29.17},
	}

	for _, tc := range tests {
		if got := Utilization(tc.hours, tc.days, tc.workers); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDailyGroupWorkers(t *testing.T) {
	t.Parallel()

	records := append(sampleRecords(), attendance.Record{Matricule: "A3", Group: "G1", Date: "2025-01-01", Hours: 2})
	daily := DailyGroupWorkers(records)
	if len(daily["2025-01-01"]["G1"]) != 2 {
		t.Fatalf("expected 2 G1 workers on 2025-01-01, got %d", len(daily["2025-01-01"]["G1"]))
	}
	if len(daily["2025-01-02"]["G2"]) != 0 {
		t.Fatalf("expected no G2 workers on 2025-01-02")
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	byDate := Filter(records, timeutil.Range{From: "2025-01-02", To: "2025-01-02"}, nil)
	if len(byDate) != 1 || byDate[0].Date != "2025-01-02" {
		t.Fatalf("unexpected date filter result: %+v", byDate)
	}

	byGroup := Filter(records, timeutil.Range{}, []string{"G2"})
	if len(byGroup) != 1 || byGroup[0].Matricule != "A2" {
		t.Fatalf("unexpected group filter result: %+v", byGroup)
	}

	if got := Groups(records); len(got) != 2 || got[0] != "G1" || got[1] != "G2" {
		t.Fatalf("unexpected groups: %v", got)
	}
}
