package reports

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// recentIssueWindowDays is the fixed rolling window for the overview's
// health-issue count. It is independent of the report's date filter.
const recentIssueWindowDays = 30

const dueSoonWindowDays = 30

// Generator runs one aggregation per call against the store. It holds no
// mutable state, so one Generator serves concurrent requests.
type Generator struct {
	store Store
	now   func() time.Time
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store, now: time.Now}
}

func Headers(kind Kind) []string {
	switch kind {
	case KindOverview:
		return []string{"Metric", "Count", "Generated At"}
	case KindHealth:
		return []string{"Animal ID", "Species", "Breed", "Condition", "Treatment", "Date", "Veterinarian"}
	case KindBreeding:
		return []string{"Female ID", "Female Species", "Male ID", "Male Species", "Date", "Outcome", "Notes"}
	case KindDeceased:
		return []string{"Animal ID", "Species", "Breed", "Date of Death", "Cause", "Notes"}
	case KindVaccination:
		return []string{"Animal ID", "Species", "Breed", "Vaccination Type", "Date", "Next Due", "Administered By"}
	default:
		return nil
	}
}

// Generate produces the full Result for one report kind. Any store failure
// surfaces as a data-access report error and no partial Result is returned.
func (g *Generator) Generate(ctx context.Context, kind Kind, rng Range) (*Result, error) {
	generated := g.now()
	switch kind {
	case KindOverview:
		return g.overview(ctx, generated)
	case KindHealth:
		return g.health(ctx, rng, generated)
	case KindBreeding:
		return g.breeding(ctx, rng, generated)
	case KindDeceased:
		return g.deceased(ctx, rng, generated)
	case KindVaccination:
		return g.vaccination(ctx, rng, generated)
	default:
		return nil, NewError(CodeUnknownReportType, fmt.Sprintf("unknown report type %q", kind))
	}
}

func (g *Generator) overview(ctx context.Context, generated time.Time) (*Result, error) {
	species, err := g.store.LiveSpeciesCounts(ctx)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "overview aggregation failed", err)
	}
	deceased, err := g.store.DeceasedCount(ctx)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "overview aggregation failed", err)
	}
	issues, err := g.store.HealthIssueCountSince(ctx, generated.AddDate(0, 0, -recentIssueWindowDays))
	if err != nil {
		return nil, WrapError(CodeDataAccess, "overview aggregation failed", err)
	}

	var live int64
	for _, sc := range species {
		live += sc.Count
	}

	res := newResult(KindOverview, generated)
	res.Chart = species
	res.Summary = map[string]any{
		"totalLiveAnimals":   live,
		"totalDeceased":      deceased,
		"recentHealthIssues": issues,
	}

	stamp := formatTimestamp(generated)
	addOverviewRow := func(label string, count int64) {
		res.Rows = append(res.Rows, []string{label, strconv.FormatInt(count, 10), stamp})
		res.Records = append(res.Records, map[string]any{"label": label, "count": count})
	}
	addOverviewRow("Total Live Animals", live)
	for _, sc := range species {
		addOverviewRow("Live "+sc.Label, sc.Count)
	}
	addOverviewRow("Total Deceased", deceased)
	addOverviewRow(fmt.Sprintf("Health Issues (Last %d Days)", recentIssueWindowDays), issues)

	return res, nil
}

func (g *Generator) health(ctx context.Context, rng Range, generated time.Time) (*Result, error) {
	recs, err := g.store.HealthRecords(ctx, rng)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "health report failed", err)
	}

	res := newResult(KindHealth, generated)
	conditions := make([]string, 0, len(recs))
	for _, rec := range recs {
		res.Rows = append(res.Rows, []string{
			rec.AnimalCode, rec.Species, rec.Breed,
			rec.Condition, rec.Treatment, formatDate(rec.Date), rec.VetName,
		})
		res.Records = append(res.Records, map[string]any{
			"animalCode": rec.AnimalCode,
			"species":    rec.Species,
			"breed":      rec.Breed,
			"condition":  rec.Condition,
			"treatment":  rec.Treatment,
			"date":       formatDate(rec.Date),
			"vetName":    rec.VetName,
		})
		conditions = append(conditions, rec.Condition)
	}
	res.Chart = countLabels(conditions)
	return res, nil
}

func (g *Generator) breeding(ctx context.Context, rng Range, generated time.Time) (*Result, error) {
	recs, err := g.store.BreedingRecords(ctx, rng)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "breeding report failed", err)
	}

	res := newResult(KindBreeding, generated)
	outcomes := make([]string, 0, len(recs))
	for _, rec := range recs {
		res.Rows = append(res.Rows, []string{
			deref(rec.FemaleCode), deref(rec.FemaleSpecies),
			deref(rec.MaleCode), deref(rec.MaleSpecies),
			formatDate(rec.Date), rec.Outcome, rec.Notes,
		})
		res.Records = append(res.Records, map[string]any{
			"femaleCode":    deref(rec.FemaleCode),
			"femaleSpecies": deref(rec.FemaleSpecies),
			"maleCode":      deref(rec.MaleCode),
			"maleSpecies":   deref(rec.MaleSpecies),
			"date":          formatDate(rec.Date),
			"outcome":       rec.Outcome,
			"notes":         rec.Notes,
		})
		outcomes = append(outcomes, rec.Outcome)
	}
	res.Chart = countLabels(outcomes)
	return res, nil
}

func (g *Generator) deceased(ctx context.Context, rng Range, generated time.Time) (*Result, error) {
	recs, err := g.store.DeceasedRecords(ctx, rng)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "deceased report failed", err)
	}

	res := newResult(KindDeceased, generated)
	causes := make([]string, 0, len(recs))
	for _, rec := range recs {
		res.Rows = append(res.Rows, []string{
			deref(rec.AnimalCode), deref(rec.Species), deref(rec.Breed),
			formatDate(rec.DateOfDeath), rec.Cause, rec.Notes,
		})
		res.Records = append(res.Records, map[string]any{
			"animalCode":  deref(rec.AnimalCode),
			"species":     deref(rec.Species),
			"breed":       deref(rec.Breed),
			"dateOfDeath": formatDate(rec.DateOfDeath),
			"cause":       rec.Cause,
			"notes":       rec.Notes,
		})
		causes = append(causes, rec.Cause)
	}
	res.Chart = countLabels(causes)
	return res, nil
}

func (g *Generator) vaccination(ctx context.Context, rng Range, generated time.Time) (*Result, error) {
	recs, err := g.store.VaccinationRecords(ctx, rng)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "vaccination report failed", err)
	}
	today := dateOnly(generated)
	dueSoon, err := g.store.VaccinationsDueBetween(ctx, today, today.AddDate(0, 0, dueSoonWindowDays))
	if err != nil {
		return nil, WrapError(CodeDataAccess, "vaccination report failed", err)
	}

	res := newResult(KindVaccination, generated)
	res.Summary = map[string]any{"dueSoon": dueSoon}
	types := make([]string, 0, len(recs))
	for _, rec := range recs {
		res.Rows = append(res.Rows, []string{
			rec.AnimalCode, rec.Species, rec.Breed,
			rec.VaccineType, formatDate(rec.Date), formatDatePtr(rec.NextDue), rec.AdministeredBy,
		})
		res.Records = append(res.Records, map[string]any{
			"animalCode":     rec.AnimalCode,
			"species":        rec.Species,
			"breed":          rec.Breed,
			"vaccineType":    rec.VaccineType,
			"date":           formatDate(rec.Date),
			"nextDue":        formatDatePtr(rec.NextDue),
			"administeredBy": rec.AdministeredBy,
		})
		types = append(types, rec.VaccineType)
	}
	res.Chart = countLabels(types)
	return res, nil
}

func newResult(kind Kind, generated time.Time) *Result {
	return &Result{
		Kind:        kind,
		GeneratedAt: generated,
		Headers:     Headers(kind),
		Rows:        make([][]string, 0),
		Records:     make([]map[string]any, 0),
	}
}

// countLabels builds a categorical breakdown, ordered by count descending
// with ties broken by label.
func countLabels(values []string) []LabelCount {
	byLabel := make(map[string]int64)
	for _, v := range values {
		byLabel[v]++
	}
	out := make([]LabelCount, 0, len(byLabel))
	for label, count := range byLabel {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
