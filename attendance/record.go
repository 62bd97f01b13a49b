package attendance

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar date format stored on every record.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var validate = validator.New()

var ErrInvalidRecord = errors.New("invalid attendance record")

// Record is one worker's attendance for one day.
type Record struct {
	ID        string    `json:"id"`
	Matricule string    `json:"matricule" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Group     string    `json:"group" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Hours     float64   `json:"hours" validate:"gt=0"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key is the natural key used to detect duplicate imports.
type Key struct {
	Matricule string
	Date      string
}

func (r Record) Key() Key {
	return Key{Matricule: r.Matricule, Date: r.Date}
}

// Validate checks the fields a stored record must satisfy.
func (r Record) Validate() error {
	if math.IsInf(r.Hours, 0) || math.IsNaN(r.Hours) {
		return fmt.Errorf("%w: hours must be a finite number", ErrInvalidRecord)
	}
	if !IsCanonicalDate(r.Date) {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRecord, r.Date)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// IsCanonicalDate reports whether value has the YYYY-MM-DD shape.
func IsCanonicalDate(value string) bool {
	return datePattern.MatchString(value)
}

// RoundHours rounds to two decimal places. NaN and infinities are returned
// unchanged.
func RoundHours(value float64) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name  *string
	Group *string
	Date  *string
	Hours *float64
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Group == nil && p.Date == nil && p.Hours == nil
}

// Apply returns a copy of r with the patch applied and validated.
func (p Patch) Apply(r Record) (Record, error) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Group != nil {
		r.Group = strings.TrimSpace(*p.Group)
	}
	if p.Date != nil {
		r.Date = strings.TrimSpace(*p.Date)
	}
	if p.Hours != nil {
		r.Hours = RoundHours(*p.Hours)
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
