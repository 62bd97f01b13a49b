package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"pointage/attendance"
	"pointage/internal/confirm"
	"pointage/roster"
	"pointage/storage"
)

const testPassphrase = "secret"

var testNow = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func TestServer_ImportCSVEndToEnd(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t)
	content := "ID,NOMBRE,ENCARGADO,FECHA,RHHH\nA1,Jean,TeamX,1/15/2025,8\n"
	fields := map[string]string{"passphrase": testPassphrase}

	resp := postUpload(t, server.URL+"/api/import", "pointage.csv", content, fields)
	var first importResponse
	decodeResponse(t, resp, http.StatusOK, &first)
	if first.Added != 1 || first.Duplicates != 0 || first.RowsParsed != 1 || first.FilesProcessed != 1 {
		t.Fatalf("unexpected first import: %+v", first)
	}

	resp = postUpload(t, server.URL+"/api/import", "pointage.csv", content, fields)
	var second importResponse
	decodeResponse(t, resp, http.StatusOK, &second)
	if second.Added != 0 || second.Duplicates != 1 {
		t.Fatalf("expected the re-import to be a duplicate, got %+v", second)
	}

	records, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 1 || records[0].Date != "2025-01-15" || records[0].Group != "TeamX" {
		t.Fatalf("unexpected stored records: %+v", records)
	}
}

func TestServer_ImportChecksPassphrase(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t)
	content := "matricule,name,group,date,hours\nA1,Jean,TeamX,2025-01-15,8\n"

	resp := postUpload(t, server.URL+"/api/import", "pointage.csv", content, map[string]string{"passphrase": "wrong"})
	var failure errorResponse
	decodeResponse(t, resp, http.StatusForbidden, &failure)

	// Malformed options are reported before the passphrase is checked.
	resp = postUpload(t, server.URL+"/api/import", "pointage.csv", content, map[string]string{"passphrase": "wrong", "mapping": "hours=0"})
	var badMapping errorResponse
	decodeResponse(t, resp, http.StatusBadRequest, &badMapping)

	resp = postUpload(t, server.URL+"/api/import", "pointage.csv", content, map[string]string{"passphrase": "wrong", "skipFirstRow": "maybe"})
	var badFlag errorResponse
	decodeResponse(t, resp, http.StatusBadRequest, &badFlag)

	resp = postUpload(t, server.URL+"/api/import", "pointage.csv", content, map[string]string{"dryRun": "true"})
	var dryRun importResponse
	decodeResponse(t, resp, http.StatusOK, &dryRun)
	if !dryRun.DryRun || dryRun.RowsParsed != 1 || dryRun.Added != 0 {
		t.Fatalf("unexpected dry run response: %+v", dryRun)
	}

	records, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected nothing stored, got %d records", len(records))
	}
}

func TestServer_ImportUnrecognizedColumnsFallsBackToMapping(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	content := "code,worker,crew,day,worked\nA1,Jean,TeamX,2025-01-15,8\n"

	resp := postUpload(t, server.URL+"/api/import", "sheet.csv", content, map[string]string{"passphrase": testPassphrase})
	var columns columnsResponse
	decodeResponse(t, resp, http.StatusUnprocessableEntity, &columns)
	if len(columns.Missing) != 5 || len(columns.Headers) != 5 {
		t.Fatalf("unexpected columns response: %+v", columns)
	}
	if columns.Preview == nil || len(columns.Preview.Rows) != 1 || columns.Preview.Headers[2] != "crew" {
		t.Fatalf("expected a preview of the sheet, got %+v", columns.Preview)
	}

	fields := map[string]string{
		"passphrase": testPassphrase,
		"matricule":  "0",
		"name":       "1",
		"group":      "2",
		"date":       "3",
		"hours":      "4",
	}
	resp = postUpload(t, server.URL+"/api/import", "sheet.csv", content, fields)
	var imported importResponse
	decodeResponse(t, resp, http.StatusOK, &imported)
	if imported.Added != 1 {
		t.Fatalf("expected mapped import to add one record, got %+v", imported)
	}

	fields["hours"] = "0"
	resp = postUpload(t, server.URL+"/api/import", "sheet.csv", content, fields)
	var invalid errorResponse
	decodeResponse(t, resp, http.StatusBadRequest, &invalid)
}

func TestServer_ImportPreview(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)
	content := "matricule;name\nA1;Jean\nB2;Marie\n"

	resp := postUpload(t, server.URL+"/api/import/preview", "sheet.csv", content, nil)
	var preview struct {
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	}
	decodeResponse(t, resp, http.StatusOK, &preview)
	if len(preview.Headers) != 2 || len(preview.Rows) != 2 || preview.Rows[1][1] != "Marie" {
		t.Fatalf("unexpected preview: %+v", preview)
	}

	resp = postUpload(t, server.URL+"/api/import/preview", "sheet.pdf", content, nil)
	var unsupported errorResponse
	decodeResponse(t, resp, http.StatusBadRequest, &unsupported)
}

func TestServer_StatsAndGroups(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, seedRecords()...)

	resp := mustGet(t, server.URL+"/api/stats?from=2025-01-01&to=2025-01-31")
	var all statsResponse
	decodeResponse(t, resp, http.StatusOK, &all)
	if all.Summary.TotalWorkers != 2 || all.Summary.TotalHours != 20 || len(all.Summary.Groups) != 2 {
		t.Fatalf("unexpected summary: %+v", all.Summary)
	}
	if all.LastAdded == nil || all.From != "2025-01-01" || all.To != "2025-01-31" {
		t.Fatalf("unexpected stats envelope: %+v", all)
	}

	resp = mustGet(t, server.URL+"/api/stats?group=TeamY")
	var teamY statsResponse
	decodeResponse(t, resp, http.StatusOK, &teamY)
	if teamY.Summary.TotalHours != 4 || teamY.Summary.TotalGroups != 1 {
		t.Fatalf("unexpected filtered summary: %+v", teamY.Summary)
	}

	resp = mustGet(t, server.URL+"/api/stats?from=2025-02-01&to=2025-01-01")
	var badRange errorResponse
	decodeResponse(t, resp, http.StatusBadRequest, &badRange)

	resp = mustGet(t, server.URL+"/api/groups")
	var groups []string
	decodeResponse(t, resp, http.StatusOK, &groups)
	if strings.Join(groups, ",") != "TeamX,TeamY" {
		t.Fatalf("unexpected groups: %v", groups)
	}
}

func TestServer_RecordLifecycle(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	resp := mustGet(t, server.URL+"/api/records/latest")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on an empty store, got %d", resp.StatusCode)
	}

	payload := map[string]any{"matricule": "A1", "name": "Jean", "group": "TeamX", "date": "2025-01-15", "hours": 7.456}
	var created createRecordResponse
	decodeResponse(t, doJSON(t, http.MethodPost, server.URL+"/api/records", payload), http.StatusCreated, &created)
	if created.Added != 1 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	var conflict createRecordResponse
	decodeResponse(t, doJSON(t, http.MethodPost, server.URL+"/api/records", payload), http.StatusConflict, &conflict)
	if conflict.Duplicates != 1 {
		t.Fatalf("unexpected conflict response: %+v", conflict)
	}

	var latest attendance.Record
	decodeResponse(t, mustGet(t, server.URL+"/api/records/latest"), http.StatusOK, &latest)
	if latest.ID == "" || latest.Hours != 7.46 {
		t.Fatalf("unexpected latest record: %+v", latest)
	}

	var updated attendance.Record
	decodeResponse(t, doJSON(t, http.MethodPatch, server.URL+"/api/records/"+latest.ID, map[string]any{"hours": 6}), http.StatusOK, &updated)
	if updated.Hours != 6 || updated.Name != "Jean" {
		t.Fatalf("unexpected updated record: %+v", updated)
	}

	var emptyPatch errorResponse
	decodeResponse(t, doJSON(t, http.MethodPatch, server.URL+"/api/records/"+latest.ID, map[string]any{}), http.StatusBadRequest, &emptyPatch)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/records/"+latest.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", resp.StatusCode)
	}

	var missing errorResponse
	decodeResponse(t, doJSON(t, http.MethodDelete, server.URL+"/api/records/"+latest.ID, nil), http.StatusNotFound, &missing)
}

func TestServer_CreateRecordValidation(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	tests := []struct {
		name    string
		payload any
	}{
		{name: "missing fields", payload: map[string]any{"matricule": "A1"}},
		{name: "slash date", payload: map[string]any{"matricule": "A1", "name": "Jean", "group": "X", "date": "01/15/2025", "hours": 8}},
		{name: "zero hours", payload: map[string]any{"matricule": "A1", "name": "Jean", "group": "X", "date": "2025-01-15", "hours": 0}},
		{name: "unknown field", payload: map[string]any{"matricule": "A1", "name": "Jean", "group": "X", "date": "2025-01-15", "hours": 8, "salary": 1}},
	}

	for _, tc := range tests {
		var failure errorResponse
		resp := doJSON(t, http.MethodPost, server.URL+"/api/records", tc.payload)
		if resp.StatusCode != http.StatusBadRequest {
			resp.Body.Close()
			t.Fatalf("%s: expected 400, got %d", tc.name, resp.StatusCode)
		}
		decodeResponse(t, resp, http.StatusBadRequest, &failure)
		if failure.Error == "" {
			t.Fatalf("%s: expected an error message", tc.name)
		}
	}
}

func TestServer_DeleteRange(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t, seedRecords()...)
	url := server.URL + "/api/records/delete-range"

	var reversed deleteRangeResponse
	decodeResponse(t, doJSON(t, http.MethodPost, url, map[string]any{"from": "2025-01-02", "to": "2025-01-01", "passphrase": testPassphrase}), http.StatusBadRequest, &reversed)

	var forbidden deleteRangeResponse
	decodeResponse(t, doJSON(t, http.MethodPost, url, map[string]any{"from": "2025-01-01", "to": "2025-01-01", "passphrase": "wrong"}), http.StatusForbidden, &forbidden)

	var deleted deleteRangeResponse
	decodeResponse(t, doJSON(t, http.MethodPost, url, map[string]any{"from": "2025-01-01", "to": "2025-01-01", "passphrase": testPassphrase}), http.StatusOK, &deleted)
	if deleted.Deleted != 2 {
		t.Fatalf("expected 2 deleted records, got %+v", deleted)
	}

	remaining, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Date != "2025-01-02" {
		t.Fatalf("unexpected remaining records: %+v", remaining)
	}
}

func TestServer_WorkersSearchAndUpdate(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, seedRecords()...)

	var page roster.Page
	decodeResponse(t, mustGet(t, server.URL+"/api/workers?q=JEA"), http.StatusOK, &page)
	if page.Total != 1 || page.Workers[0].Matricule != "A1" || page.Workers[0].TotalHours != 16 {
		t.Fatalf("unexpected worker page: %+v", page)
	}

	var updated updateWorkerResponse
	decodeResponse(t, doJSON(t, http.MethodPatch, server.URL+"/api/workers/A1", map[string]any{"group": "TeamZ"}), http.StatusOK, &updated)
	if updated.Updated != 2 {
		t.Fatalf("expected 2 updated records, got %+v", updated)
	}

	var groups []string
	decodeResponse(t, mustGet(t, server.URL+"/api/groups"), http.StatusOK, &groups)
	if strings.Join(groups, ",") != "TeamY,TeamZ" {
		t.Fatalf("unexpected groups after move: %v", groups)
	}

	var missing errorResponse
	decodeResponse(t, doJSON(t, http.MethodPatch, server.URL+"/api/workers/ZZ", map[string]any{"group": "TeamZ"}), http.StatusNotFound, &missing)

	var empty errorResponse
	decodeResponse(t, doJSON(t, http.MethodPatch, server.URL+"/api/workers/A1", map[string]any{}), http.StatusBadRequest, &empty)
}

func TestServer_ExportRecordsCSV(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, seedRecords()...)

	resp := mustGet(t, server.URL+"/api/export/records?from=2025-01-01&to=2025-01-31&format=csv&total=true")
	body := readBody(t, resp, http.StatusOK)
	if disposition := resp.Header.Get("Content-Disposition"); !strings.Contains(disposition, "pointages_2025-01-01_to_2025-01-31.csv") {
		t.Fatalf("unexpected content disposition: %q", disposition)
	}
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 5 || strings.TrimSpace(lines[0]) != "Matricule/ID,Name,Group,Date,Hours" {
		t.Fatalf("unexpected csv export:\n%s", body)
	}

	var empty errorResponse
	decodeResponse(t, mustGet(t, server.URL+"/api/export/records?day=2024-01-01"), http.StatusNotFound, &empty)

	var badFormat errorResponse
	decodeResponse(t, mustGet(t, server.URL+"/api/export/effectif?format=pdf"), http.StatusBadRequest, &badFormat)
}

func TestServer_ExportWorkerExcel(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, seedRecords()...)

	resp := mustGet(t, server.URL+"/api/workers/A1/export")
	body := readBody(t, resp, http.StatusOK)
	if disposition := resp.Header.Get("Content-Disposition"); !strings.Contains(disposition, "Jean_A1_pointage_2025-02-01.xlsx") {
		t.Fatalf("unexpected content disposition: %q", disposition)
	}

	book, err := excelize.OpenReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows("Pointage")
	if err != nil {
		t.Fatalf("read worker sheet: %v", err)
	}
	// header, two days, total
	if len(rows) != 4 || rows[3][0] != "TOTAL" {
		t.Fatalf("unexpected worker sheet rows: %v", rows)
	}

	var missing errorResponse
	decodeResponse(t, mustGet(t, server.URL+"/api/workers/ZZ/export"), http.StatusNotFound, &missing)
}

func TestServer_EchoesRequestID(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	resp := mustGet(t, server.URL+"/api/groups")
	resp.Body.Close()
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/groups", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func newTestServer(t *testing.T, records ...attendance.Record) (*httptest.Server, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for _, record := range records {
		if _, err := store.Insert(context.Background(), record); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	service := roster.NewService(store, zerolog.Nop())
	handler := NewServer(service, confirm.NewGate(testPassphrase), zerolog.Nop(), Options{
		Now: func() time.Time { return testNow },
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, store
}

func seedRecords() []attendance.Record {
	return []attendance.Record{
		{Matricule: "A1", Name: "Jean", Group: "TeamX", Date: "2025-01-01", Hours: 8},
		{Matricule: "A1", Name: "Jean", Group: "TeamX", Date: "2025-01-02", Hours: 8},
		{Matricule: "B2", Name: "Marie", Group: "TeamY", Date: "2025-01-01", Hours: 4},
	}
}

func postUpload(t *testing.T, url, filename, content string, fields map[string]string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	resp, err := http.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	return resp
}

func doJSON(t *testing.T, method, url string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("send request: %v", err)
	}
	return resp
}

func mustGet(t *testing.T, url string) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response, wantStatus int) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, body)
	}
	return string(body)
}

func decodeResponse(t *testing.T, resp *http.Response, wantStatus int, out any) {
	t.Helper()

	body := readBody(t, resp, wantStatus)
	if err := json.Unmarshal([]byte(body), out); err != nil {
		t.Fatalf("decode response %q: %v", body, err)
	}
}
