package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"farmtrack/backend/internal/reports"
	"farmtrack/backend/internal/reports/export"
)

type fakeReportStore struct {
	species      []reports.LabelCount
	deceased     int64
	issues       int64
	health       []reports.HealthRecord
	breeding     []reports.BreedingRecord
	deceasedRecs []reports.DeceasedRecord
	vaccinations []reports.VaccinationRecord
	dueSoon      int64
	err          error
}

func (f *fakeReportStore) LiveSpeciesCounts(context.Context) ([]reports.LabelCount, error) {
	return f.species, f.err
}

func (f *fakeReportStore) DeceasedCount(context.Context) (int64, error) {
	return f.deceased, f.err
}

func (f *fakeReportStore) HealthIssueCountSince(context.Context, time.Time) (int64, error) {
	return f.issues, f.err
}

func (f *fakeReportStore) HealthRecords(_ context.Context, rng reports.Range) ([]reports.HealthRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []reports.HealthRecord
	for _, rec := range f.health {
		if rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReportStore) BreedingRecords(_ context.Context, rng reports.Range) ([]reports.BreedingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []reports.BreedingRecord
	for _, rec := range f.breeding {
		if rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReportStore) DeceasedRecords(_ context.Context, rng reports.Range) ([]reports.DeceasedRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []reports.DeceasedRecord
	for _, rec := range f.deceasedRecs {
		if rng.Contains(rec.DateOfDeath) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReportStore) VaccinationRecords(_ context.Context, rng reports.Range) ([]reports.VaccinationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []reports.VaccinationRecord
	for _, rec := range f.vaccinations {
		if rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeReportStore) VaccinationsDueBetween(context.Context, time.Time, time.Time) (int64, error) {
	return f.dueSoon, f.err
}

func newTestServer(t *testing.T, store reports.Store) *Server {
	t.Helper()
	exporter := export.NewExporter(t.TempDir(), export.HTMLRenderer{})
	return NewServer(store, nil, exporter, "test-secret", []string{"*"})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleReportData_MissingType(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/data", nil)
	rec := httptest.NewRecorder()

	s.handleReportData(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Contains(t, body["message"], "report_type")
}

func TestHandleReportData_UnknownType(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/data?report_type=shearing", nil)
	rec := httptest.NewRecorder()

	s.handleReportData(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["success"])
}

func TestHandleReportData_BadDates(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	cases := []string{
		"report_type=health&start_date=2024-13-40&end_date=2024-12-31",
		"report_type=health&start_date=2024-01-01",
		"report_type=health&start_date=2024-06-01&end_date=2024-01-01",
	}
	for _, qs := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/data?"+qs, nil)
		rec := httptest.NewRecorder()
		s.handleReportData(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, qs)
		require.Equal(t, false, decodeBody(t, rec)["success"], qs)
	}
}

func TestHandleReportData_Overview(t *testing.T) {
	store := &fakeReportStore{
		species: []reports.LabelCount{
			{Label: "Cow", Count: 12}, {Label: "Goat", Count: 9}, {Label: "Sheep", Count: 7},
			{Label: "Pig", Count: 5}, {Label: "Chicken", Count: 40}, {Label: "Rabbit", Count: 3},
			{Label: "Duck", Count: 6}, {Label: "Turkey", Count: 2},
		},
		deceased: 4,
		issues:   2,
	}
	s := newTestServer(t, store)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/data?report_type=overview", nil)
	rec := httptest.NewRecorder()

	s.handleReportData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	require.Equal(t, "overview", data["reportType"])

	pie := data["speciesData"].(map[string]any)
	labels := pie["labels"].([]any)
	values := pie["data"].([]any)
	colors := pie["colors"].([]any)
	require.Len(t, labels, 8)
	require.Len(t, values, 8)
	require.Len(t, colors, 8)
	require.Equal(t, colors[0], colors[6])

	summary := data["summary"].(map[string]any)
	require.Equal(t, float64(84), summary["totalLiveAnimals"])
	require.Equal(t, float64(4), summary["totalDeceased"])
}

func TestHandleReportData_StoreFailure(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{err: errors.New("connection reset")})
	req := httptest.NewRequest(http.MethodGet, "/api/reports/data?report_type=health", nil)
	rec := httptest.NewRecorder()

	s.handleReportData(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	// internal causes never reach the response body
	require.NotContains(t, body["message"], "connection reset")
}

func TestHandleExportReport_VaccinationCSV(t *testing.T) {
	next := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeReportStore{
		vaccinations: []reports.VaccinationRecord{
			{AnimalCode: "COW-001", Species: "Cow", Breed: "Friesian", VaccineType: "FMD",
				Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), NextDue: &next, AdministeredBy: "Dr. Achieng"},
		},
	}
	s := newTestServer(t, store)

	payload := `{"report_type":"vaccination","format":"csv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	s.handleExportReport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	filename := body["filename"].(string)
	require.Regexp(t, regexp.MustCompile(`^animal_report_vaccination_\d{4}-\d{2}-\d{2}\.csv$`), filename)

	data, err := os.ReadFile(body["path"].(string))
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), 4)
	require.Equal(t,
		[]string{"Animal ID", "Species", "Breed", "Vaccination Type", "Date", "Next Due", "Administered By"},
		records[2])
	require.Equal(t, "COW-001", records[3][0])
}

func TestHandleExportReport_Validation(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	cases := []struct {
		name    string
		payload string
	}{
		{"missing report_type", `{"format":"csv"}`},
		{"missing format", `{"report_type":"health"}`},
		{"unsupported format", `{"report_type":"health","format":"xlsx"}`},
		{"unknown type", `{"report_type":"shearing","format":"csv"}`},
		{"bad payload", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(tc.payload))
			rec := httptest.NewRecorder()
			s.handleExportReport(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, false, decodeBody(t, rec)["success"])
		})
	}
}

func TestRouter_AuthGates(t *testing.T) {
	store := &fakeReportStore{
		species: []reports.LabelCount{{Label: "Cow", Count: 10}},
		dueSoon: 2,
	}
	s := newTestServer(t, store)
	router := s.Router()

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := get("")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	staffToken, err := s.signToken(7, "wanjiku", "staff")
	require.NoError(t, err)
	rec = get(staffToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	adminToken, err := s.signToken(1, "admin", "admin")
	require.NoError(t, err)
	rec = get(adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	require.Equal(t, float64(2), data["vaccinationsDueSoon"])
	require.Contains(t, data, "speciesData")
	require.Contains(t, data, "healthTrend")
	require.Contains(t, data, "breedingSuccess")
}

func TestRouter_HealthEndpointIsPublic(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRouter_RejectsForgedToken(t *testing.T) {
	s := newTestServer(t, &fakeReportStore{})
	other := newTestServer(t, &fakeReportStore{})
	other.jwtSecret = []byte("someone-else")

	forged, err := other.signToken(1, "admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
