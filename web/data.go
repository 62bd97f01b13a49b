package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"pointage/attendance"
	"pointage/internal/timeutil"
	"pointage/roster"
)

var validate = validator.New()

type recordRequest struct {
	Matricule string  `json:"matricule" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Group     string  `json:"group" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Hours     float64 `json:"hours" validate:"gt=0"`
}

func (req recordRequest) record() attendance.Record {
	return attendance.Record{
		Matricule: strings.TrimSpace(req.Matricule),
		Name:      strings.TrimSpace(req.Name),
		Group:     strings.TrimSpace(req.Group),
		Date:      req.Date,
		Hours:     attendance.RoundHours(req.Hours),
	}
}

type recordPatchRequest struct {
	Name  *string  `json:"name" validate:"omitempty,min=1"`
	Group *string  `json:"group" validate:"omitempty,min=1"`
	Date  *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Hours *float64 `json:"hours" validate:"omitempty,gt=0"`
}

func (req recordPatchRequest) patch() attendance.Patch {
	return attendance.Patch{Name: req.Name, Group: req.Group, Date: req.Date, Hours: req.Hours}
}

type deleteRangeRequest struct {
	From       string `json:"from" validate:"required"`
	To         string `json:"to" validate:"required"`
	Passphrase string `json:"passphrase"`
}

type workerPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Group *string `json:"group" validate:"omitempty,min=1"`
}

// decodeRequest decodes a single JSON object into out and validates it.
func decodeRequest(r *http.Request, out any) error {
	if err := decodeJSON(r, out); err != nil {
		return badRequest(fmt.Errorf("decode request: %w", err))
	}
	if err := validate.Struct(out); err != nil {
		return badRequest(err)
	}
	return nil
}

// filterFromQuery reads a date range (day, from/to, or year/month/period)
// and repeated or comma separated group parameters.
func filterFromQuery(values url.Values) (roster.Filter, error) {
	year, err := intParam(values, "year")
	if err != nil {
		return roster.Filter{}, err
	}
	month, err := intParam(values, "month")
	if err != nil {
		return roster.Filter{}, err
	}

	selector := timeutil.Selector{
		Day:    values.Get("day"),
		From:   values.Get("from"),
		To:     values.Get("to"),
		Year:   year,
		Month:  month,
		Period: values.Get("period"),
	}
	period, err := selector.Resolve()
	if err != nil {
		return roster.Filter{}, badRequest(err)
	}
	return roster.Filter{Period: period, Groups: groupsFromQuery(values)}, nil
}

func groupsFromQuery(values url.Values) []string {
	var groups []string
	for _, raw := range values["group"] {
		for _, group := range strings.Split(raw, ",") {
			if group = strings.TrimSpace(group); group != "" {
				groups = append(groups, group)
			}
		}
	}
	return groups
}

func intParam(values url.Values, key string) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Errorf("invalid %s %q", key, raw))
	}
	return value, nil
}

func boolParam(values url.Values, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest(fmt.Errorf("invalid %s %q", key, raw))
	}
	return value, nil
}

// mappingFromForm reads an explicit column mapping from an upload form,
// either as one "mapping" value or as one index per field. It returns nil
// when the form carries no mapping.
func mappingFromForm(values url.Values) (*attendance.ColumnMapping, error) {
	if raw := strings.TrimSpace(values.Get("mapping")); raw != "" {
		mapping, err := attendance.ParseMapping(raw)
		if err != nil {
			return nil, err
		}
		return &mapping, nil
	}

	present := false
	for _, field := range attendance.Fields {
		if strings.TrimSpace(values.Get(field)) != "" {
			present = true
			break
		}
	}
	if !present {
		return nil, nil
	}

	var mapping attendance.ColumnMapping
	for _, field := range attendance.Fields {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			return nil, fmt.Errorf("%w: column index for %s is required", attendance.ErrInvalidMapping, field)
		}
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: column index for %s must be a number", attendance.ErrInvalidMapping, field)
		}
		if err := mapping.Set(field, index); err != nil {
			return nil, err
		}
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	return &mapping, nil
}
