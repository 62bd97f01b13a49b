package output

import (
	"strings"
	"time"

	"pointage/internal/timeutil"
)

// RecordsFilename names a raw export, e.g. pointages_2025-01-01_to_2025-01-15.
// A single-day or open range falls back to one date.
func RecordsFilename(period timeutil.Range, now time.Time, extension string) string {
	return rangeFilename("pointages", period, now) + extension
}

func EffectifFilename(period timeutil.Range, now time.Time, extension string) string {
	return rangeFilename("daily_effectif", period, now) + extension
}

// WorkerFilename names a single worker export, e.g. Jean_Dupont_A1_pointage_2025-01-31.
func WorkerFilename(name, matricule string, now time.Time, extension string) string {
	parts := []string{sanitize(name), sanitize(matricule), "pointage", timeutil.Today(now)}
	return strings.Join(parts, "_") + extension
}

func rangeFilename(prefix string, period timeutil.Range, now time.Time) string {
	switch {
	case period.From != "" && period.To != "" && period.From != period.To:
		return prefix + "_" + period.From + "_to_" + period.To
	case period.From != "":
		return prefix + "_" + period.From
	case period.To != "":
		return prefix + "_" + period.To
	default:
		return prefix + "_" + timeutil.Today(now)
	}
}

func sanitize(value string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(value), func(r rune) bool {
		return r == ' ' || r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|'
	})
	if len(fields) == 0 {
		return "worker"
	}
	return strings.Join(fields, "_")
}
