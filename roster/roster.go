package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pointage/attendance"
	"pointage/importer"
	"pointage/internal/timeutil"
	"pointage/stats"
	"pointage/storage"
)

var ErrEmptyUpdate = errors.New("nothing to update")

// Service groups the record operations behind the CLI and the HTTP API.
type Service struct {
	repo   storage.Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo storage.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

type Filter struct {
	Period timeutil.Range
	Groups []string
}

// List returns the records inside the filter's period and groups.
func (s *Service) List(ctx context.Context, filter Filter) ([]attendance.Record, error) {
	records, err := s.repo.QueryRange(ctx, attendance.FieldDate, filter.Period.From, filter.Period.To)
	if err != nil {
		return nil, err
	}
	return stats.Filter(records, filter.Period, filter.Groups), nil
}

func (s *Service) Summary(ctx context.Context, filter Filter) (stats.Summary, error) {
	records, err := s.List(ctx, filter)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(records), nil
}

// Add stores records whose (matricule, date) is not present yet.
func (s *Service) Add(ctx context.Context, records []attendance.Record) (importer.PersistResult, error) {
	result, err := importer.Persist(ctx, s.repo, records, s.now())
	if err != nil {
		return result, err
	}
	s.logger.Info().Int("added", result.Added).Int("duplicates", result.Duplicates).Msg("records stored")
	return result, nil
}

// DeleteRange removes every record dated from..to, one at a time. On failure
// the records already removed stay removed and their count is returned.
func (s *Service) DeleteRange(ctx context.Context, from, to string) (int, error) {
	period, err := timeutil.ValidateRange(from, to)
	if err != nil {
		return 0, err
	}

	records, err := s.repo.QueryRange(ctx, attendance.FieldDate, period.From, period.To)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, record := range records {
		if err := s.repo.Delete(ctx, record.ID); err != nil {
			s.logger.Error().Err(err).Int("deleted", deleted).Msg("range delete interrupted")
			return deleted, fmt.Errorf("delete record %s: %w", record.ID, err)
		}
		deleted++
	}
	s.logger.Info().Str("from", period.From).Str("to", period.To).Int("deleted", deleted).Msg("range deleted")
	return deleted, nil
}

func (s *Service) UpdateRecord(ctx context.Context, id string, patch attendance.Patch) (attendance.Record, error) {
	if patch.IsEmpty() {
		return attendance.Record{}, ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UpdateWorker rewrites name and/or group on every record of a worker and
// returns how many records changed. Concurrent writers are not detected.
func (s *Service) UpdateWorker(ctx context.Context, matricule string, name, group *string) (int, error) {
	patch := attendance.Patch{Name: name, Group: group}
	if patch.IsEmpty() {
		return 0, ErrEmptyUpdate
	}

	records, err := s.repo.QueryEqual(ctx, attendance.FieldMatricule, matricule)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("worker %s: %w", matricule, storage.ErrRecordNotFound)
	}

	updated := 0
	for _, record := range records {
		if _, err := s.repo.Update(ctx, record.ID, patch); err != nil {
			return updated, fmt.Errorf("update record %s: %w", record.ID, err)
		}
		updated++
	}
	return updated, nil
}

func (s *Service) WorkerRecords(ctx context.Context, matricule string, period timeutil.Range) ([]attendance.Record, error) {
	records, err := s.repo.QueryEqual(ctx, attendance.FieldMatricule, matricule)
	if err != nil {
		return nil, err
	}
	return stats.Filter(records, period, nil), nil
}

// LastAdded returns the most recently created record, or nil on an empty store.
func (s *Service) LastAdded(ctx context.Context) (*attendance.Record, error) {
	records, err := s.repo.Latest(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}
