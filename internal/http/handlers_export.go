package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"worklog/internal/export"
	"worklog/internal/log"
	"worklog/internal/report"
)

func (s *Server) handleExportChart(w http.ResponseWriter, r *http.Request) {
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
		s.writeServiceError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteChart(&buf, chart, chartTitle(q)); err != nil {
		s.writeServiceError(w, r, log.OpExport, err)
		return
	}
	writeWorkbook(w, chartFilename(q), &buf)
}

func (s *Server) handleExportLedger(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := ParseQuery(kind, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.deps.Ledger.List(r.Context(), kind, q)
	if err != nil {
		s.writeServiceError(w, r, log.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, kind, records); err != nil {
		s.writeServiceError(w, r, log.OpExport, err)
		return
	}
	writeWorkbook(w, kind.Collection()+".xlsx", &buf)
}

// writeWorkbook sends a fully rendered workbook so a render failure can
// still produce a JSON error.
func writeWorkbook(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// chartFilename is e.g. income-all-2024.xlsx or expense-by-method-2024.xlsx.
func chartFilename(q report.ChartQuery) string {
	group := "all"
	if q.By != report.GroupAll {
		group = strings.TrimPrefix(strings.ReplaceAll(q.By.String(), " ", "-"), q.Kind.String()+"-")
	}
	return fmt.Sprintf("%s-%s-%s.xlsx", q.Kind, group, q.Year)
}
