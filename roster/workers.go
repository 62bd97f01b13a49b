package roster

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pointage/attendance"
)

// WorkersPerPage is the default worker search page size.
const WorkersPerPage = 20

type Worker struct {
	Matricule   string  `json:"matricule"`
	Name        string  `json:"name"`
	Group       string  `json:"group"`
	RecordCount int     `json:"recordCount"`
	TotalHours  float64 `json:"totalHours"`
}

type Page struct {
	Workers    []Worker `json:"workers"`
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
	Total      int      `json:"total"`
}

// SearchWorkers groups records by matricule and keeps workers whose matricule
// or name contains query, ignoring case. Name and group come from the first
// record seen for each worker.
func SearchWorkers(records []attendance.Record, query string) []Worker {
	needle := strings.ToLower(strings.TrimSpace(query))

	byMatricule := make(map[string]*Worker)
	hours := make(map[string]decimal.Decimal)
	for _, record := range records {
		worker, ok := byMatricule[record.Matricule]
		if !ok {
			worker = &Worker{Matricule: record.Matricule, Name: record.Name, Group: record.Group}
			byMatricule[record.Matricule] = worker
			hours[record.Matricule] = decimal.Zero
		}
		worker.RecordCount++
		hours[record.Matricule] = hours[record.Matricule].Add(decimal.NewFromFloat(record.Hours))
	}

	workers := make([]Worker, 0, len(byMatricule))
	for matricule, worker := range byMatricule {
		if needle != "" &&
			!strings.Contains(strings.ToLower(worker.Matricule), needle) &&
			!strings.Contains(strings.ToLower(worker.Name), needle) {
			continue
		}
		worker.TotalHours = hours[matricule].Round(2).InexactFloat64()
		workers = append(workers, *worker)
	}
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].Matricule < workers[j].Matricule
	})
	return workers
}

// Paginate returns one 1-based page. Out-of-range pages are clamped.
func Paginate(workers []Worker, page, perPage int) Page {
	if perPage <= 0 {
		perPage = WorkersPerPage
	}
	totalPages := (len(workers) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(workers) {
		end = len(workers)
	}
	return Page{
		Workers:    append([]Worker{}, workers[start:end]...),
		Page:       page,
		TotalPages: totalPages,
		Total:      len(workers),
	}
}

func (s *Service) SearchWorkers(ctx context.Context, query string, page int) (Page, error) {
	records, err := s.repo.All(ctx)
	if err != nil {
		return Page{}, err
	}
	return Paginate(SearchWorkers(records, query), page, WorkersPerPage), nil
}
