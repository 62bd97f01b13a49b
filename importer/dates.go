package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"pointage/attendance"
)

const (
	// Numbers at or above this bound are not treated as spreadsheet serial
	// dates, so date columns holding larger numbers are left unconverted.
	serialDateLimit = 100000
	// Serial number of 1970-01-01 in the 1900 date system.
	unixEpochSerial = 25569
	secondsPerDay   = 86400
)

var monthDayYearPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// FormatDate converts a date token to YYYY-MM-DD. Tokens no rule understands
// are returned trimmed but otherwise unchanged and fail record validation later.
func FormatDate(token string) string {
	trimmed := strings.TrimSpace(token)

	if attendance.IsCanonicalDate(trimmed) {
		return trimmed
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial >= 0 && serial < serialDateLimit {
		seconds := (serial - unixEpochSerial) * secondsPerDay
		return time.UnixMilli(int64(seconds * 1000)).UTC().Format(attendance.DateLayout)
	}

	if match := monthDayYearPattern.FindStringSubmatch(trimmed); match != nil {
		candidate := match[3] + "-" + padTwo(match[1]) + "-" + padTwo(match[2])
		if _, err := time.Parse(attendance.DateLayout, candidate); err == nil {
			return candidate
		}
	}

	return trimmed
}

func padTwo(value string) string {
	if len(value) == 1 {
		return "0" + value
	}
	return value
}
