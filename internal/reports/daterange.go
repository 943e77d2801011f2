package reports

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// Range is an optional inclusive [Start, End] bound on a report's primary
// date column. The zero Range means no filter (full history).
type Range struct {
	Start time.Time
	End   time.Time
}

func RangeBetween(start, end time.Time) Range {
	return Range{Start: dateOnly(start), End: dateOnly(end)}
}

func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls within the range, compared at day
// granularity and inclusive of both bounds.
func (r Range) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	d := dateOnly(t)
	return !d.Before(dateOnly(r.Start)) && !d.After(dateOnly(r.End))
}

type rangeParams struct {
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// ParseRange validates an optional start/end date pair. Either both bounds
// are supplied or neither; a malformed value fails the whole request rather
// than being coerced to a default.
func ParseRange(startDate, endDate string) (Range, error) {
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)

	if startDate == "" && endDate == "" {
		return Range{}, nil
	}
	if startDate == "" || endDate == "" {
		return Range{}, NewError(CodeMissingParameter, "start_date and end_date must be supplied together")
	}

	if err := validate.Struct(rangeParams{StartDate: startDate, EndDate: endDate}); err != nil {
		return Range{}, WrapError(CodeInvalidDateFormat, "dates must be valid YYYY-MM-DD values", err)
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return Range{}, WrapError(CodeInvalidDateFormat, "start_date must be a valid YYYY-MM-DD value", err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return Range{}, WrapError(CodeInvalidDateFormat, "end_date must be a valid YYYY-MM-DD value", err)
	}
	if start.After(end) {
		return Range{}, NewError(CodeInvalidDateFormat, "start_date must not be after end_date")
	}

	return Range{Start: start, End: end}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
