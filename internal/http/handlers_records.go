package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"worklog/internal/core"
	"worklog/internal/log"
)

type recordsResponse struct {
	Kind    core.Kind     `json:"kind"`
	Count   int           `json:"count"`
	Records []core.Record `json:"records"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
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
		s.writeServiceError(w, r, log.OpList, err)
		return
	}
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Kind: kind, Count: len(records), Records: records})
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var rec core.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.deps.Ledger.Add(r.Context(), kind, sanitizeRecord(rec))
	if err != nil {
		s.writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var rec core.Record
	if err := decodeJSON(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.deps.Ledger.Update(r.Context(), kind, chi.URLParam(r, "id"), sanitizeRecord(rec))
	if err != nil {
		s.writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req deleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := s.deps.Ledger.Delete(r.Context(), kind, req.IDs)
	if err != nil {
		s.writeServiceError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": removed})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	years, err := s.deps.Ledger.Years(r.Context(), kind)
	if err != nil {
		s.writeServiceError(w, r, log.OpList, err)
		return
	}
	if years == nil {
		years = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"years": years})
}

func sanitizeRecord(r core.Record) core.Record {
	r.Date = sanitizeInput(r.Date)
	r.Company = sanitizeInput(r.Company)
	r.Tool = sanitizeInput(r.Tool)
	r.Location = sanitizeInput(r.Location)
	r.Category = sanitizeInput(r.Category)
	r.Method = sanitizeInput(r.Method)
	r.Note = sanitizeInput(r.Note)
	return r
}
