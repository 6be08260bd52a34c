package http

import (
	"net/http"

	"worklog/internal/core"
	"worklog/internal/log"
)

type labelRequest struct {
	Label string `json:"label"`
}

type labelsResponse struct {
	Set    core.LabelSet `json:"set"`
	Labels []string      `json:"labels"`
}

func (s *Server) handleAllLabels(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Labels.All(r.Context())
	if err != nil {
		s.writeServiceError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	set, err := parseLabelSet(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	labels, err := s.deps.Labels.Labels(r.Context(), set)
	if err != nil {
		s.writeServiceError(w, r, log.OpList, err)
		return
	}
	writeLabels(w, http.StatusOK, set, labels)
}

func (s *Server) handleAddLabel(w http.ResponseWriter, r *http.Request) {
	s.editLabel(w, r, log.OpCreate)
}

func (s *Server) handleRemoveLabel(w http.ResponseWriter, r *http.Request) {
	s.editLabel(w, r, log.OpDelete)
}

func (s *Server) editLabel(w http.ResponseWriter, r *http.Request, op string) {
	set, err := parseLabelSet(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req labelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	label := sanitizeInput(req.Label)

	var labels []string
	if op == log.OpCreate {
		labels, err = s.deps.Labels.Add(r.Context(), set, label)
	} else {
		labels, err = s.deps.Labels.Remove(r.Context(), set, label)
	}
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Label list updated",
		log.FieldOperation, op, log.FieldLabelSet, set.String(), log.FieldLabel, label)
	status := http.StatusOK
	if op == log.OpCreate {
		status = http.StatusCreated
	}
	writeLabels(w, status, set, labels)
}

func writeLabels(w http.ResponseWriter, status int, set core.LabelSet, labels []string) {
	if labels == nil {
		labels = []string{}
	}
	writeJSON(w, status, labelsResponse{Set: set, Labels: labels})
}
