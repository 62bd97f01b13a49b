package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"pointage/attendance"
	"pointage/internal/timeutil"
)

// ReferenceWorkdayHours is the length of a full working day used for
// utilization.
const ReferenceWorkdayHours = 8

type GroupStats struct {
	Group         string  `json:"group"`
	UniqueWorkers int     `json:"uniqueWorkers"`
	TotalHours    float64 `json:"totalHours"`
	WorkingDays   int     `json:"workingDays"`
	RecordCount   int     `json:"recordCount"`
	Utilization   float64 `json:"utilization"`
}

type Summary struct {
	TotalWorkers int          `json:"totalWorkers"`
	TotalDays    int          `json:"totalDays"`
	TotalHours   float64      `json:"totalHours"`
	TotalGroups  int          `json:"totalGroups"`
	Groups       []GroupStats `json:"groups"`
}

type groupAccumulator struct {
	workers map[string]struct{}
	days    map[string]struct{}
	hours   decimal.Decimal
	records int
}

// Summarize computes global totals and per-group statistics, groups sorted by
// name.
func Summarize(records []attendance.Record) Summary {
	workers := make(map[string]struct{})
	days := make(map[string]struct{})
	total := decimal.Zero
	groups := make(map[string]*groupAccumulator)

	for _, record := range records {
		workers[record.Matricule] = struct{}{}
		days[record.Date] = struct{}{}
		hours := decimal.NewFromFloat(record.Hours)
		total = total.Add(hours)

		acc, ok := groups[record.Group]
		if !ok {
			acc = &groupAccumulator{
				workers: make(map[string]struct{}),
				days:    make(map[string]struct{}),
				hours:   decimal.Zero,
			}
			groups[record.Group] = acc
		}
		acc.workers[record.Matricule] = struct{}{}
		acc.days[record.Date] = struct{}{}
		acc.hours = acc.hours.Add(hours)
		acc.records++
	}

	summary := Summary{
		TotalWorkers: len(workers),
		TotalDays:    len(days),
		TotalHours:   total.Round(2).InexactFloat64(),
		TotalGroups:  len(groups),
		Groups:       make([]GroupStats, 0, len(groups)),
	}
	for name, acc := range groups {
		hours := acc.hours.Round(2).InexactFloat64()
		summary.Groups = append(summary.Groups, GroupStats{
			Group:         name,
			UniqueWorkers: len(acc.workers),
			TotalHours:    hours,
			WorkingDays:   len(acc.days),
			RecordCount:   acc.records,
			Utilization:   Utilization(hours, len(acc.days), len(acc.workers)),
		})
	}
	sort.Slice(summary.Groups, func(i, j int) bool {
		return summary.Groups[i].Group < summary.Groups[j].Group
	})
	return summary
}

// Utilization returns hours / (days * workers * ReferenceWorkdayHours) as a
// percentage clamped to [0, 100]. It is 0 when there are no days or workers.
func Utilization(totalHours float64, workingDays, uniqueWorkers int) float64 {
	capacity := decimal.NewFromInt(int64(workingDays) * int64(uniqueWorkers) * ReferenceWorkdayHours)
	if capacity.IsZero() {
		return 0
	}

	percent := decimal.NewFromFloat(totalHours).Div(capacity).Mul(decimal.NewFromInt(100))
	if percent.LessThan(decimal.Zero) {
		return 0
	}
	if percent.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}
	return percent.Round(2).InexactFloat64()
}

// DailyGroupWorkers returns, per date and group, the set of distinct
// matricules present.
func DailyGroupWorkers(records []attendance.Record) map[string]map[string]map[string]struct{} {
	daily := make(map[string]map[string]map[string]struct{})
	for _, record := range records {
		groups, ok := daily[record.Date]
		if !ok {
			groups = make(map[string]map[string]struct{})
			daily[record.Date] = groups
		}
		workers, ok := groups[record.Group]
		if !ok {
			workers = make(map[string]struct{})
			groups[record.Group] = workers
		}
		workers[record.Matricule] = struct{}{}
	}
	return daily
}

// Groups returns the distinct group names in sorted order.
func Groups(records []attendance.Record) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, record := range records {
		if _, ok := seen[record.Group]; ok {
			continue
		}
		seen[record.Group] = struct{}{}
		names = append(names, record.Group)
	}
	sort.Strings(names)
	return names
}

// Filter keeps records inside period whose group is one of groups. An empty
// groups slice keeps every group.
func Filter(records []attendance.Record, period timeutil.Range, groups []string) []attendance.Record {
	allowed := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		allowed[group] = struct{}{}
	}

	filtered := make([]attendance.Record, 0, len(records))
	for _, record := range records {
		if !period.Contains(record.Date) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[record.Group]; !ok {
				continue
			}
		}
		filtered = append(filtered, record)
	}
	return filtered
}
