// Package web serves the pointage JSON API for a trusted local network. The
// passphrase gate confirms imports and range deletes; it is not authentication.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pointage/attendance"
	"pointage/importer"
	"pointage/internal/confirm"
	"pointage/internal/timeutil"
	"pointage/output"
	"pointage/roster"
	"pointage/storage"
)

const defaultMaxUploadBytes = 32 << 20

var errBadRequest = errors.New("bad request")

type Options struct {
	// SkipFirstRow is the import default when a request does not set skipFirstRow.
	SkipFirstRow bool
	// MaxUploadBytes caps multipart bodies; zero means 32 MiB.
	MaxUploadBytes int64
	Now            func() time.Time
}

type Server struct {
	service *roster.Service
	gate    confirm.Gate
	logger  zerolog.Logger
	options Options
	handler http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewServer(service *roster.Service, gate confirm.Gate, logger zerolog.Logger, options Options) *Server {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = defaultMaxUploadBytes
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	server := &Server{
		service: service,
		gate:    gate,
		logger:  logger,
		options: options,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats", server.handleStats)
	mux.HandleFunc("GET /api/groups", server.handleGroups)
	mux.HandleFunc("GET /api/records", server.handleRecords)
	mux.HandleFunc("GET /api/records/latest", server.handleLatestRecord)
	mux.HandleFunc("POST /api/records", server.handleCreateRecord)
	mux.HandleFunc("PATCH /api/records/{id}", server.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", server.handleDeleteRecord)
	mux.HandleFunc("POST /api/records/delete-range", server.handleDeleteRange)
	mux.HandleFunc("POST /api/import/preview", server.handleImportPreview)
	mux.HandleFunc("POST /api/import", server.handleImport)
	mux.HandleFunc("GET /api/workers", server.handleWorkers)
	mux.HandleFunc("PATCH /api/workers/{matricule}", server.handleUpdateWorker)
	mux.HandleFunc("GET /api/workers/{matricule}/export", server.handleExportWorker)
	mux.HandleFunc("GET /api/export/records", server.handleExportRecords)
	mux.HandleFunc("GET /api/export/effectif", server.handleExportEffectif)
	server.handler = server.logRequests(mux)

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// errorStatus maps domain errors to HTTP status codes. Anything unrecognized
// is a storage or I/O failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrRecordNotFound), errors.Is(err, output.ErrNoRecords):
		return http.StatusNotFound
	case errors.Is(err, confirm.ErrPassphraseRequired), errors.Is(err, confirm.ErrIncorrectPassphrase):
		return http.StatusForbidden
	case errors.Is(err, importer.ErrColumnsNotRecognized):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, attendance.ErrInvalidRecord),
		errors.Is(err, attendance.ErrInvalidMapping),
		errors.Is(err, timeutil.ErrMissingDate),
		errors.Is(err, timeutil.ErrRangeOrder),
		errors.Is(err, timeutil.ErrInvalidDate),
		errors.Is(err, importer.ErrEmptySource),
		errors.Is(err, importer.ErrNoValidRecords),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, output.ErrUnsupportedFormat),
		errors.Is(err, roster.ErrEmptyUpdate),
		errors.Is(err, storage.ErrUnknownField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// tempUploadPattern keeps the upload's extension so the importer can infer
// the format from the temp file name.
func tempUploadPattern(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return "upload-*"
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "upload"
	}
	if ext == "" {
		return stem + "-*"
	}
	return stem + "-*" + ext
}
