package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"pointage/output"
	"pointage/roster"
)

type updateWorkerResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	withTotal, err := boolParam(query, "total", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writer, err := output.WriterForFormat(query.Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, err := output.RecordsTable(records, withTotal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, writer, table, output.RecordsFilename(filter.Period, s.options.Now(), writer.Extension()))
}

func (s *Server) handleExportEffectif(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writer, err := output.WriterForFormat(query.Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, err := output.EffectifTable(records)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, writer, table, output.EffectifFilename(filter.Period, s.options.Now(), writer.Extension()))
}

func (s *Server) handleExportWorker(w http.ResponseWriter, r *http.Request) {
	matricule := strings.TrimSpace(r.PathValue("matricule"))
	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writer, err := output.WriterForFormat(query.Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.service.WorkerRecords(r.Context(), matricule, filter.Period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	table, err := output.WorkerTable(records)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("worker %s: %w", matricule, err))
		return
	}
	worker := roster.SearchWorkers(records, "")[0]
	s.writeTable(w, r, writer, table, output.WorkerFilename(worker.Name, worker.Matricule, s.options.Now(), writer.Extension()))
}

// writeTable renders the whole file before touching the response so a
// rendering failure still gets a JSON error.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, writer output.Writer, table output.Table, filename string) {
	var buffer bytes.Buffer
	if err := writer.Write(&buffer, table); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buffer.Bytes())
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := intParam(query, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.service.SearchWorkers(r.Context(), query.Get("q"), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpdateWorker renames a worker or moves them to another group across
// all of their records.
func (s *Server) handleUpdateWorker(w http.ResponseWriter, r *http.Request) {
	var req workerPatchRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.service.UpdateWorker(r.Context(), strings.TrimSpace(r.PathValue("matricule")), req.Name, req.Group)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateWorkerResponse{Updated: updated})
}
