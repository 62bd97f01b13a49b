package importer

import (
	"errors"
	"fmt"
	"strings"

	"pointage/attendance"
)

var ErrColumnsNotRecognized = errors.New("columns not recognized")

// columnAliases lists the accepted header spellings per canonical field
// (English, Spanish and French exports).
var columnAliases = map[string][]string{
	attendance.FieldMatricule: {"matricule", "codigi", "id", "worker_id", "employee_id"},
	attendance.FieldName:      {"name", "nombre", "full_name", "employee_name"},
	attendance.FieldGroup:     {"group", "encargado", "team", "department", "groupe"},
	attendance.FieldDate:      {"date", "fecha", "date_work"},
	attendance.FieldHours:     {"hours", "rhhh", "h", "horas", "heures"},
}

// ColumnsError reports a header row that could not be mapped automatically.
// Callers fall back to an explicit attendance.ColumnMapping.
type ColumnsError struct {
	Missing []string
	Headers []string
}

func (e *ColumnsError) Error() string {
	return fmt.Sprintf(
		"columns not recognized: missing %s (expected columns like matricule/codigi, name/nombre, group/encargado, date/fecha, hours/rhhh)",
		strings.Join(e.Missing, ", "),
	)
}

func (e *ColumnsError) Unwrap() error {
	return ErrColumnsNotRecognized
}

// NormalizeColumn returns the canonical field a header stands for.
func NormalizeColumn(header string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(header))
	for _, field := range attendance.Fields {
		for _, alias := range columnAliases[field] {
			if alias == lower {
				return field, true
			}
		}
	}
	return "", false
}

// DetectMapping resolves every canonical field from a header row. When two
// headers resolve to the same field the right-most one wins.
func DetectMapping(headers []string) (attendance.ColumnMapping, []string, bool) {
	var mapping attendance.ColumnMapping
	found := make(map[string]bool, len(attendance.Fields))

	for index, header := range headers {
		field, ok := NormalizeColumn(header)
		if !ok {
			continue
		}
		_ = mapping.Set(field, index)
		found[field] = true
	}

	missing := make([]string, 0, len(attendance.Fields))
	for _, field := range attendance.Fields {
		if !found[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return attendance.ColumnMapping{}, missing, false
	}
	return mapping, nil, true
}
