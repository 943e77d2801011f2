package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"farmtrack/backend/internal/reports"
)

const reportTimeout = 10 * time.Second

func (s *Server) handleReportData(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	q := r.URL.Query()
	if strings.TrimSpace(q.Get("report_type")) == "" {
		respondError(w, http.StatusBadRequest, "report_type is required")
		return
	}
	kind, err := reports.ParseKind(q.Get("report_type"))
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}
	rng, err := reports.ParseRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}

	res, err := s.gen.Generate(ctx, kind, rng)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}

	data := map[string]any{
		"reportType":  string(res.Kind),
		"generatedAt": res.GeneratedAt.Format("2006-01-02 15:04:05"),
		"records":     res.Records,
		"chartSeries": res.Chart,
	}
	if len(res.Summary) > 0 {
		data["summary"] = res.Summary
	}
	if kind == reports.KindOverview {
		data["speciesData"] = reports.SpeciesDistribution(res.Chart)
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	var in struct {
		ReportType string `json:"report_type"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
		Format     string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(in.ReportType) == "" {
		respondError(w, http.StatusBadRequest, "report_type is required")
		return
	}
	if strings.TrimSpace(in.Format) == "" {
		respondError(w, http.StatusBadRequest, "format is required")
		return
	}

	kind, err := reports.ParseKind(in.ReportType)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}
	format, err := reports.ParseFormat(in.Format)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}
	rng, err := reports.ParseRange(in.StartDate, in.EndDate)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}

	res, err := s.gen.Generate(ctx, kind, rng)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}
	filename, path, err := s.exporter.Export(res, format)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
		"path":     path,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
	defer cancel()

	data, err := s.gen.Dashboard(ctx)
	if err != nil {
		s.respondReportError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// respondReportError converts any report-layer error into the JSON error
// envelope. Internal causes are logged, never echoed to the caller.
func (s *Server) respondReportError(w http.ResponseWriter, r *http.Request, err error) {
	var rerr *reports.Error
	if errors.As(err, &rerr) {
		if rerr.UserFacing() {
			respondError(w, http.StatusBadRequest, rerr.Message)
			return
		}
		s.log.WithFields(logrus.Fields{
			"module":     "api",
			"path":       r.URL.Path,
			"request_id": requestIDFrom(r),
			"code":       string(rerr.Code),
		}).Error(rerr.Error())
		respondError(w, http.StatusInternalServerError, rerr.Message)
		return
	}

	s.log.WithFields(logrus.Fields{
		"module":     "api",
		"path":       r.URL.Path,
		"request_id": requestIDFrom(r),
	}).Error(err.Error())
	respondError(w, http.StatusInternalServerError, "report request failed")
}
