package storage

import (
	"context"
	"errors"
	"fmt"

	"pointage/attendance"
)

var (
	ErrRecordNotFound = errors.New("pointage record not found")
	ErrUnknownField   = errors.New("unknown query field")
)

// Repository is the record store used by the importer, the roster service and
// the HTTP API. Empty range bounds are open.
type Repository interface {
	Insert(ctx context.Context, record attendance.Record) (string, error)
	All(ctx context.Context) ([]attendance.Record, error)
	Get(ctx context.Context, id string) (attendance.Record, error)
	QueryRange(ctx context.Context, field, from, to string) ([]attendance.Record, error)
	QueryEqual(ctx context.Context, field, value string) ([]attendance.Record, error)
	Update(ctx context.Context, id string, patch attendance.Patch) (attendance.Record, error)
	Delete(ctx context.Context, id string) error
	Latest(ctx context.Context, limit int) ([]attendance.Record, error)
}

// queryColumns whitelists the record fields that may appear in a WHERE clause.
var queryColumns = map[string]string{
	attendance.FieldDate:      "date",
	attendance.FieldMatricule: "matricule",
	attendance.FieldName:      "name",
	attendance.FieldGroup:     "grp",
}

func columnFor(field string) (string, error) {
	column, ok := queryColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return column, nil
}
