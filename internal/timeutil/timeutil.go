package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Half-month periods used for payroll ("quinzaine") exports.
const (
	PeriodFirstHalf  = "QZ1"
	PeriodSecondHalf = "QZ2"
	PeriodAll        = "all"
)

var (
	ErrMissingDate = errors.New("start and end dates are required")
	ErrRangeOrder  = errors.New("start date must be before or equal to end date")
	ErrInvalidDate = errors.New("invalid date")
)

// Range is an inclusive span of canonical dates. Empty bounds are open.
type Range struct {
	From string
	To   string
}

func (r Range) IsZero() bool {
	return r.From == "" && r.To == ""
}

func (r Range) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	return parsed, nil
}

// ValidateRange requires both dates and from <= to.
func ValidateRange(from, to string) (Range, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return Range{}, ErrMissingDate
	}

	start, err := ParseDate(from)
	if err != nil {
		return Range{}, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return Range{}, err
	}
	if start.After(end) {
		return Range{}, ErrRangeOrder
	}
	return Range{From: from, To: to}, nil
}

func Day(date string) (Range, error) {
	if _, err := ParseDate(date); err != nil {
		return Range{}, err
	}
	date = strings.TrimSpace(date)
	return Range{From: date, To: date}, nil
}

// HalfMonth returns days 1-15 for QZ1, 16 to month end for QZ2 and the whole
// month for "all".
func HalfMonth(year int, month time.Month, period string) (Range, error) {
	if month < time.January || month > time.December {
		return Range{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	mid := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)

	switch strings.ToUpper(strings.TrimSpace(period)) {
	case PeriodFirstHalf:
		return Range{From: first.Format(DateLayout), To: mid.Format(DateLayout)}, nil
	case PeriodSecondHalf:
		return Range{From: mid.AddDate(0, 0, 1).Format(DateLayout), To: last.Format(DateLayout)}, nil
	case strings.ToUpper(PeriodAll), "":
		return Range{From: first.Format(DateLayout), To: last.Format(DateLayout)}, nil
	default:
		return Range{}, fmt.Errorf("unknown period %q (expected QZ1, QZ2 or all)", period)
	}
}

// Selector holds the mutually exclusive ways an operator picks a date range.
type Selector struct {
	Day    string
	From   string
	To     string
	Year   int
	Month  int
	Period string
}

// Resolve turns a selector into a range. A selector with nothing set yields an
// open range; From/To set individually are validated as a pair.
func (s Selector) Resolve() (Range, error) {
	switch {
	case strings.TrimSpace(s.Day) != "":
		return Day(s.Day)
	case s.Year != 0 || s.Month != 0:
		if s.Year == 0 || s.Month == 0 {
			return Range{}, fmt.Errorf("%w: year and month must be set together", ErrInvalidDate)
		}
		return HalfMonth(s.Year, time.Month(s.Month), s.Period)
	case strings.TrimSpace(s.From) != "" || strings.TrimSpace(s.To) != "":
		return ValidateRange(s.From, s.To)
	default:
		return Range{}, nil
	}
}

func Today(now time.Time) string {
	return now.Format(DateLayout)
}
