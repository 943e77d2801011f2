package reports

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

const trendMonths = 6

// chartPalette is the fixed pie palette; it cycles when there are more
// species than colors.
var chartPalette = []string{"#4e73df", "#1cc88a", "#36b9cc", "#f6c23e", "#e74a3b", "#858796"}

type PieData struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
	Colors []string `json:"colors"`
}

type TrendSeries struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

type MonthlyTrend struct {
	Labels []string      `json:"labels"`
	Series []TrendSeries `json:"series"`
}

type RateSeries struct {
	Labels []string  `json:"labels"`
	Rates  []float64 `json:"rates"`
}

// SpeciesDistribution shapes live per-species counts into pie chart data.
// Labels, Data and Colors always have equal length.
func SpeciesDistribution(counts []LabelCount) PieData {
	pie := PieData{
		Labels: make([]string, 0, len(counts)),
		Data:   make([]int64, 0, len(counts)),
		Colors: make([]string, 0, len(counts)),
	}
	for i, c := range counts {
		pie.Labels = append(pie.Labels, c.Label)
		pie.Data = append(pie.Data, c.Count)
		pie.Colors = append(pie.Colors, chartPalette[i%len(chartPalette)])
	}
	return pie
}

// HealthTrend buckets health records into the trailing six calendar months,
// one series per condition observed in the window. Missing month/condition
// combinations are filled with 0 so every series has the same length.
func HealthTrend(records []HealthRecord, now time.Time) MonthlyTrend {
	months := trailingMonths(now, trendMonths)
	index := make(map[time.Time]int, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		index[m] = i
		labels[i] = m.Format("Jan 2006")
	}

	counts := make(map[string][]int64)
	for _, rec := range records {
		i, ok := index[monthStart(rec.Date)]
		if !ok {
			continue
		}
		if _, seen := counts[rec.Condition]; !seen {
			counts[rec.Condition] = make([]int64, len(months))
		}
		counts[rec.Condition][i]++
	}

	conditions := make([]string, 0, len(counts))
	for c := range counts {
		conditions = append(conditions, c)
	}
	sort.Strings(conditions)

	trend := MonthlyTrend{Labels: labels, Series: make([]TrendSeries, 0, len(conditions))}
	for _, c := range conditions {
		trend.Series = append(trend.Series, TrendSeries{Label: c, Data: counts[c]})
	}
	return trend
}

// BreedingSuccessRate computes the monthly success percentage over the
// trailing six months. A month with no breeding records yields 0 rather
// than a division by zero.
func BreedingSuccessRate(records []BreedingRecord, now time.Time) RateSeries {
	months := trailingMonths(now, trendMonths)
	index := make(map[time.Time]int, len(months))
	labels := make([]string, len(months))
	for i, m := range months {
		index[m] = i
		labels[i] = m.Format("Jan 2006")
	}

	totals := make([]int64, len(months))
	successes := make([]int64, len(months))
	for _, rec := range records {
		i, ok := index[monthStart(rec.Date)]
		if !ok {
			continue
		}
		totals[i]++
		if strings.EqualFold(strings.TrimSpace(rec.Outcome), "successful") {
			successes[i]++
		}
	}

	rates := make([]float64, len(months))
	for i := range months {
		if totals[i] == 0 {
			continue
		}
		rates[i] = round2(float64(successes[i]) / float64(totals[i]) * 100)
	}
	return RateSeries{Labels: labels, Rates: rates}
}

// DueWithin counts vaccinations whose next_due falls within [today,
// today+days], inclusive of both bounds.
func DueWithin(records []VaccinationRecord, now time.Time, days int) int64 {
	today := dateOnly(now)
	limit := today.AddDate(0, 0, days)
	var n int64
	for _, rec := range records {
		if rec.NextDue == nil {
			continue
		}
		due := dateOnly(*rec.NextDue)
		if !due.Before(today) && !due.After(limit) {
			n++
		}
	}
	return n
}

// Dashboard assembles the live visualization feed: species pie, six-month
// health trend, breeding success series and the upcoming-vaccination count.
func (g *Generator) Dashboard(ctx context.Context) (map[string]any, error) {
	now := g.now()
	species, err := g.store.LiveSpeciesCounts(ctx)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "dashboard data failed", err)
	}

	window := RangeBetween(monthStart(now).AddDate(0, -(trendMonths-1), 0), now)
	health, err := g.store.HealthRecords(ctx, window)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "dashboard data failed", err)
	}
	breeding, err := g.store.BreedingRecords(ctx, window)
	if err != nil {
		return nil, WrapError(CodeDataAccess, "dashboard data failed", err)
	}

	today := dateOnly(now)
	dueSoon, err := g.store.VaccinationsDueBetween(ctx, today, today.AddDate(0, 0, dueSoonWindowDays))
	if err != nil {
		return nil, WrapError(CodeDataAccess, "dashboard data failed", err)
	}

	return map[string]any{
		"speciesData":         SpeciesDistribution(species),
		"healthTrend":         HealthTrend(health, now),
		"breedingSuccess":     BreedingSuccessRate(breeding, now),
		"vaccinationsDueSoon": dueSoon,
	}, nil
}

// trailingMonths returns the first day of each of the last n calendar
// months ending with the current one, in chronological order.
func trailingMonths(now time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	current := monthStart(now)
	for i := n - 1; i >= 0; i-- {
		out = append(out, current.AddDate(0, -i, 0))
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
