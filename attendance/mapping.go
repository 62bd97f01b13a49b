package attendance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names shared by the column normalizer and the manual mapper.
const (
	FieldMatricule = "matricule"
	FieldName      = "name"
	FieldGroup     = "group"
	FieldDate      = "date"
	FieldHours     = "hours"
)

// Fields lists the canonical fields in display order.
var Fields = []string{FieldMatricule, FieldName, FieldGroup, FieldDate, FieldHours}

var ErrInvalidMapping = errors.New("invalid column mapping")

// ColumnMapping holds zero-based source column indices for each field.
type ColumnMapping struct {
	Matricule int
	Name      int
	Group     int
	Date      int
	Hours     int
}

// DefaultMapping mirrors a source laid out in canonical field order.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{Matricule: 0, Name: 1, Group: 2, Date: 3, Hours: 4}
}

// Index returns the column index for a canonical field.
func (m ColumnMapping) Index(field string) (int, bool) {
	switch field {
	case FieldMatricule:
		return m.Matricule, true
	case FieldName:
		return m.Name, true
	case FieldGroup:
		return m.Group, true
	case FieldDate:
		return m.Date, true
	case FieldHours:
		return m.Hours, true
	default:
		return 0, false
	}
}

// Set assigns the column index of a canonical field.
func (m *ColumnMapping) Set(field string, index int) error {
	switch field {
	case FieldMatricule:
		m.Matricule = index
	case FieldName:
		m.Name = index
	case FieldGroup:
		m.Group = index
	case FieldDate:
		m.Date = index
	case FieldHours:
		m.Hours = index
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidMapping, field)
	}
	return nil
}

// Validate requires five non-negative, pairwise distinct indices.
func (m ColumnMapping) Validate() error {
	seen := make(map[int]string, len(Fields))
	for _, field := range Fields {
		index, _ := m.Index(field)
		if index < 0 {
			return fmt.Errorf("%w: %s column must be >= 0", ErrInvalidMapping, field)
		}
		if other, exists := seen[index]; exists {
			return fmt.Errorf("%w: %s and %s both use column %d", ErrInvalidMapping, other, field, index)
		}
		seen[index] = field
	}
	return nil
}

// mappingKeys adds the one-letter shorthands accepted by ParseMapping.
var mappingKeys = map[string]string{
	"m": FieldMatricule,
	"n": FieldName,
	"g": FieldGroup,
	"d": FieldDate,
	"h": FieldHours,
}

// ParseMapping reads "matricule=0,name=1,group=2,date=3,hours=4", or the short
// form "m=0,n=1,g=2,d=3,h=4". Fields that are not listed keep their
// DefaultMapping index.
func ParseMapping(value string) (ColumnMapping, error) {
	mapping := DefaultMapping()
	value = strings.TrimSpace(value)
	if value == "" {
		return mapping, mapping.Validate()
	}

	for _, part := range strings.Split(value, ",") {
		key, raw, found := strings.Cut(part, "=")
		if !found {
			return ColumnMapping{}, fmt.Errorf("%w: expected field=index, got %q", ErrInvalidMapping, part)
		}
		index, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return ColumnMapping{}, fmt.Errorf("%w: index for %s: %v", ErrInvalidMapping, key, err)
		}
		field := strings.ToLower(strings.TrimSpace(key))
		if long, ok := mappingKeys[field]; ok {
			field = long
		}
		if err := mapping.Set(field, index); err != nil {
			return ColumnMapping{}, err
		}
	}

	if err := mapping.Validate(); err != nil {
		return ColumnMapping{}, err
	}
	return mapping, nil
}
