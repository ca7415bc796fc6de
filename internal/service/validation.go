package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/tempofiller/internal/domain"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

// Hour bounds accepted for a single entry.
const (
	MinHours = 0.1
	MaxHours = 24
)

// DefaultMaxBulkEntries caps a single bulk request.
const DefaultMaxBulkEntries = 100

type fieldErrors map[string]string

func (f fieldErrors) err(msg string) error {
	if len(f) == 0 {
		return nil
	}
	details := make(map[string]any, len(f))
	for k, v := range f {
		details[k] = v
	}
	return errorutil.NewValidationError(msg, details)
}

func (f fieldErrors) date(field, value string, required bool) {
	if value == "" {
		if required {
			f[field] = "is required"
		}
		return
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		f[field] = "must be a date in YYYY-MM-DD format"
	}
}

func (f fieldErrors) dateOrder(startField, start, endField, end string) {
	if _, bad := f[startField]; bad || start == "" || end == "" {
		return
	}
	if _, bad := f[endField]; bad {
		return
	}
	if end < start {
		f[endField] = "must not be before " + startField
	}
}

func (f fieldErrors) hours(field string, hours float64) {
	if hours < MinHours || hours > MaxHours {
		f[field] = fmt.Sprintf("must be between %g and %g", float64(MinHours), float64(MaxHours))
	}
}

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}

// monthRange returns the first and last calendar day of a YYYY-MM month.
func monthRange(month string) (string, string, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", errorutil.NewValidationError("month must be in YYYY-MM format", map[string]any{"month": month})
	}
	end := start.AddDate(0, 1, -1)
	return start.Format(domain.DateLayout), end.Format(domain.DateLayout), nil
}
