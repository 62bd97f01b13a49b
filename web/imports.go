package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"pointage/importer"
)

type importResponse struct {
	importer.Result
	DryRun     bool   `json:"dryRun"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Error      string `json:"error,omitempty"`
}

type columnsResponse struct {
	Error   string            `json:"error"`
	Missing []string          `json:"missing"`
	Headers []string          `json:"headers"`
	Preview *importer.Preview `json:"preview,omitempty"`
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.receiveUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cleanup()

	preview, err := importer.PreviewFile(path, r.FormValue("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleImport parses an uploaded sheet and stores its new records. Headers
// that cannot be mapped answer 422 with a preview so the caller can retry
// with explicit column indices.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := s.receiveUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cleanup()

	values := r.Form
	dryRun, err := boolParam(values, "dryRun", false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	skipFirstRow, err := boolParam(values, "skipFirstRow", s.options.SkipFirstRow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mapping, err := mappingFromForm(values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !dryRun {
		if err := s.gate.Check(r.FormValue("passphrase")); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	format := r.FormValue("format")
	result, err := importer.Run([]string{path}, importer.RunOptions{
		Format:       format,
		SkipFirstRow: skipFirstRow,
		Mapping:      mapping,
		Logger:       zerolog.Ctx(r.Context()),
	})
	if err != nil {
		var columnsErr *importer.ColumnsError
		if errors.As(err, &columnsErr) {
			response := columnsResponse{Error: columnsErr.Error(), Missing: columnsErr.Missing, Headers: columnsErr.Headers}
			if preview, previewErr := importer.PreviewFile(path, format); previewErr == nil {
				response.Preview = &preview
			}
			writeJSON(w, http.StatusUnprocessableEntity, response)
			return
		}
		s.writeError(w, r, err)
		return
	}

	response := importResponse{Result: *result, DryRun: dryRun}
	if dryRun {
		writeJSON(w, http.StatusOK, response)
		return
	}

	persisted, err := s.service.Add(r.Context(), result.Records)
	response.Added = persisted.Added
	response.Duplicates = persisted.Duplicates
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("added", persisted.Added).Msg("import interrupted")
		response.Error = err.Error()
		writeJSON(w, errorStatus(err), response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// receiveUpload copies the "file" part of a multipart request to a temp file
// named after the upload. The returned cleanup removes it.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (string, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.options.MaxUploadBytes); err != nil {
		return "", nil, badRequest(fmt.Errorf("parse multipart form: %w", err))
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, badRequest(errors.New("missing file upload"))
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", tempUploadPattern(header.Filename))
	if err != nil {
		return "", nil, fmt.Errorf("create temp upload: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp upload: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
