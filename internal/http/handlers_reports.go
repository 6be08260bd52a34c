package http

import (
	"errors"
	"net/http"

	"worklog/internal/log"
	"worklog/internal/report"
	"worklog/internal/services"
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := ParseChartQuery(kind, r.URL.Query(), s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, err := s.deps.Reports.Chart(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Reports.Dashboard(r.Context())
	if err != nil {
		s.writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleRefresh reloads both collections. A partial failure keeps the
// previous snapshot of the failed collection and is reported as 503.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reports.Refresh(r.Context()); err != nil {
		var refreshErr *services.ErrRefresh
		if errors.As(err, &refreshErr) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Refresh failed",
				log.FieldKind, refreshErr.Kind.String(), log.FieldError, err.Error())
		}
		s.writeServiceError(w, r, log.OpRefresh, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// chartTitle names a chart for exports.
func chartTitle(q report.ChartQuery) string {
	if q.By == report.GroupAll {
		return q.Kind.TotalName() + " " + q.Year
	}
	return q.By.String() + " " + q.Year
}
