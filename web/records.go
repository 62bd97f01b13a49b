package web

import (
	"net/http"
	"strings"

	"pointage/attendance"
	"pointage/internal/timeutil"
	"pointage/roster"
	"pointage/stats"
)

type statsResponse struct {
	From      string             `json:"from,omitempty"`
	To        string             `json:"to,omitempty"`
	Summary   stats.Summary      `json:"summary"`
	LastAdded *attendance.Record `json:"lastAdded"`
}

type createRecordResponse struct {
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Error      string `json:"error,omitempty"`
}

type deleteRangeResponse struct {
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.service.Summary(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lastAdded, err := s.service.LastAdded(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		From:      filter.Period.From,
		To:        filter.Period.To,
		Summary:   summary,
		LastAdded: lastAdded,
	})
}

// handleGroups lists every known group name for filter pickers.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List(r.Context(), roster.Filter{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Groups(records))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	records, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLatestRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.service.LastAdded(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if record == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleCreateRecord adds one manually entered record. A record whose
// (matricule, date) already exists is reported as a conflict.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.service.Add(r.Context(), []attendance.Record{req.record()})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if result.Duplicates > 0 {
		writeJSON(w, http.StatusConflict, createRecordResponse{
			Duplicates: result.Duplicates,
			Error:      "a record for this matricule and date already exists",
		})
		return
	}
	writeJSON(w, http.StatusCreated, createRecordResponse{Added: result.Added})
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordPatchRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	record, err := s.service.UpdateRecord(r.Context(), strings.TrimSpace(r.PathValue("id")), req.patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteRecord(r.Context(), strings.TrimSpace(r.PathValue("id"))); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRange checks the range before the passphrase. Partial deletes
// report the count reached alongside the error.
func (s *Server) handleDeleteRange(w http.ResponseWriter, r *http.Request) {
	var req deleteRangeRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	period, err := timeutil.ValidateRange(req.From, req.To)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.gate.Check(req.Passphrase); err != nil {
		s.writeError(w, r, err)
		return
	}

	deleted, err := s.service.DeleteRange(r.Context(), period.From, period.To)
	if err != nil {
		writeJSON(w, errorStatus(err), deleteRangeResponse{Deleted: deleted, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, deleteRangeResponse{Deleted: deleted})
}
