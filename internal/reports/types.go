package reports

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kind selects which aggregator runs for a report request.
type Kind string

const (
	KindOverview    Kind = "overview"
	KindHealth      Kind = "health"
	KindBreeding    Kind = "breeding"
	KindDeceased    Kind = "deceased"
	KindVaccination Kind = "vaccination"
)

func ParseKind(v string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(v))) {
	case KindOverview:
		return KindOverview, nil
	case KindHealth:
		return KindHealth, nil
	case KindBreeding:
		return KindBreeding, nil
	case KindDeceased:
		return KindDeceased, nil
	case KindVaccination:
		return KindVaccination, nil
	default:
		return "", NewError(CodeUnknownReportType, fmt.Sprintf("unknown report type %q", strings.TrimSpace(v)))
	}
}

func (k Kind) Title() string {
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Format is an export artifact format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

func ParseFormat(v string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(v))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", NewError(CodeUnsupportedFormat, fmt.Sprintf("unsupported export format %q", strings.TrimSpace(v)))
	}
}

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// HealthRecord is a health observation joined to its animal.
type HealthRecord struct {
	AnimalCode string
	Species    string
	Breed      string
	Condition  string
	Treatment  string
	Date       time.Time
	VetName    string
}

// BreedingRecord joins both sides of a breeding event. The animal columns
// come from left joins, so a dangling foreign key leaves them nil instead
// of dropping the row.
type BreedingRecord struct {
	FemaleCode    *string
	FemaleSpecies *string
	MaleCode      *string
	MaleSpecies   *string
	Date          time.Time
	Outcome       string
	Notes         string
}

type DeceasedRecord struct {
	AnimalCode  *string
	Species     *string
	Breed       *string
	DateOfDeath time.Time
	Cause       string
	Notes       string
}

// VaccinationRecord comes from an inner join, so the animal fields are
// always present.
type VaccinationRecord struct {
	AnimalCode     string
	Species        string
	Breed          string
	VaccineType    string
	Date           time.Time
	NextDue        *time.Time
	AdministeredBy string
}

// Result is the uniform output of every aggregator. Headers/Rows feed the
// export renderers; Records and Chart feed the JSON endpoints. A Result is
// built per request and discarded once the response is sent.
type Result struct {
	Kind        Kind
	GeneratedAt time.Time
	Headers     []string
	Rows        [][]string
	Records     []map[string]any
	Summary     map[string]any
	Chart       []LabelCount
}

// Store is the data access gateway the aggregators read through. Row
// ordering (primary date descending) and range filtering are part of each
// method's contract; implementations map database rows to the typed records
// above exactly once.
type Store interface {
	LiveSpeciesCounts(ctx context.Context) ([]LabelCount, error)
	DeceasedCount(ctx context.Context) (int64, error)
	HealthIssueCountSince(ctx context.Context, since time.Time) (int64, error)
	HealthRecords(ctx context.Context, rng Range) ([]HealthRecord, error)
	BreedingRecords(ctx context.Context, rng Range) ([]BreedingRecord, error)
	DeceasedRecords(ctx context.Context, rng Range) ([]DeceasedRecord, error)
	VaccinationRecords(ctx context.Context, rng Range) ([]VaccinationRecord, error)
	VaccinationsDueBetween(ctx context.Context, from, to time.Time) (int64, error)
}
