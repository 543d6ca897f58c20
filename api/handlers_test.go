/*
handlers_test.go - HTTP-level tests for the deletion-request API

Tests drive the full router with an in-memory store, so every request
crosses the same middleware, serialization, and domain paths production
traffic does.
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fajarisfan/sirs-rme-pro/document"
	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/store/sqlite"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testRosterConfig() roster.Config {
	return roster.Config{
		Aliases: []roster.Alias{
			{Fragment: "isfan", Person: "Isfan"},
			{Fragment: "udin", Person: "Udin"},
			{Fragment: "rey", Person: "Rey"},
			{Fragment: "jaka", Person: "Jaka"},
			{Fragment: "teguh", Person: "Teguh"},
			{Fragment: "ferdi", Person: "Ferdi"},
			{Fragment: "hisyam", Person: "Hisyam"},
		},
		Location:      time.UTC,
		LateAfternoon: "Udin",
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := testRosterConfig()
	duty := roster.NewCachedResolver(roster.NewResolver(store, cfg))
	ing := roster.NewIngester(document.NewXLSXExtractor(), store, cfg)
	ing.Invalidate = duty.Invalidate
	svc := workflow.NewService(store, store, duty)

	h := NewHandler(store, svc, ing, duty, cfg)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func submitBody(tech string) SubmitTaskRequest {
	var req SubmitTaskRequest
	req.Requester.Name = "Siti Rahma"
	req.Requester.NIP = "198703122010012003"
	req.Requester.Unit = "Poli Umum"
	req.Patients = []PatientDTO{{
		Name:         "Budi Santoso",
		RecordNumber: "123456789",
		VisitDate:    "2026-08-20",
		Reason:       "entri ganda",
	}}
	req.Technician = tech
	return req
}

// scheduleWorkbook builds an .xlsx grid with one row per (name, codes).
func scheduleWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadRoster(t *testing.T, url string, content []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "jadwal.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url+"/api/roster/import", &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

func TestImportRosterThenResolveDuty(t *testing.T) {
	// GIVEN: A fresh system with no roster
	// WHEN: Uploading a month grid and asking who is on duty
	// THEN: no_schedule before, the scheduled technician after

	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/roster/active?at=2026-08-05T10:00:00Z", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("active before import: %d", resp.StatusCode)
	}
	duty := decode[DutyDTO](t, resp)
	if duty.Status != "no_schedule" {
		t.Fatalf("expected no_schedule, got %q", duty.Status)
	}

	workbook := scheduleWorkbook(t, [][]string{
		{"No", "Nama", "1", "2", "3", "4", "5"},
		{"1", "Teguh Adi Pradana", "L", "S", "M", "L", "P"},
		{"2", "Syamsudin Nur", "P", "P", "S", "S", "L"},
	})
	resp = uploadRoster(t, srv.URL, workbook)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: %d", resp.StatusCode)
	}
	result := decode[ImportResultDTO](t, resp)
	if !result.OK || result.Entries != 10 {
		t.Fatalf("import result = %+v", result)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/roster/active?at=2026-08-05T10:00:00Z", nil)
	duty = decode[DutyDTO](t, resp)
	if duty.Status != "ok" || len(duty.Staff) != 1 || duty.Staff[0] != "Teguh" {
		t.Fatalf("duty after import = %+v", duty)
	}

	// Night continuation: day 3 is Teguh's night, still on at 05:00 of day 4.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/roster/active?at=2026-08-04T05:00:00Z", nil)
	duty = decode[DutyDTO](t, resp)
	if duty.Status != "ok" || len(duty.Staff) != 1 || duty.Staff[0] != "Teguh" {
		t.Fatalf("night continuation = %+v", duty)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/roster/entries", nil)
	entries := decode[[]RosterEntryDTO](t, resp)
	if len(entries) != 10 {
		t.Fatalf("entries = %d", len(entries))
	}
}

func TestImportRoster_RejectsJunkUpload(t *testing.T) {
	// GIVEN: A loaded roster
	// WHEN: Uploading bytes that are not a workbook
	// THEN: 422, ok=false, and the previous roster survives

	srv, _ := newTestServer(t)

	good := scheduleWorkbook(t, [][]string{
		{"No", "Nama", "1"},
		{"1", "Teguh Adi Pradana", "P"},
	})
	if resp := uploadRoster(t, srv.URL, good); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed import: %d", resp.StatusCode)
	}

	resp := uploadRoster(t, srv.URL, []byte("definitely not xlsx"))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("junk import: %d", resp.StatusCode)
	}
	result := decode[ImportResultDTO](t, resp)
	if result.OK {
		t.Fatal("junk import reported ok")
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/roster/entries", nil)
	entries := decode[[]RosterEntryDTO](t, resp)
	if len(entries) != 1 {
		t.Fatalf("previous roster clobbered: %d entries", len(entries))
	}
}

func TestActiveStaff_BadTimestamp(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/roster/active?at=yesterday", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// =============================================================================
// TASK ENDPOINTS
// =============================================================================

func TestTaskFlow_SubmitClaimCompleteArchive(t *testing.T) {
	// GIVEN: A submitted deletion request
	// WHEN: A technician claims and completes it over HTTP
	// THEN: The task walks the lifecycle and lands in archive and stats

	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", submitBody("Teguh"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: %d", resp.StatusCode)
	}
	task := decode[TaskDTO](t, resp)
	if task.Status != "queued" || task.Technician != "Teguh" || task.DisplayName != "Budi Santoso" {
		t.Fatalf("submitted task = %+v", task)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks?technician=Teguh", nil)
	open := decode[[]TaskDTO](t, resp)
	if len(open) != 1 || open[0].ID != task.ID {
		t.Fatalf("open queue = %+v", open)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+task.ID+"/claim",
		ClaimTaskRequest{Technician: "Teguh"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim: %d", resp.StatusCode)
	}
	claimed := decode[TaskDTO](t, resp)
	if claimed.Status != "in_progress" {
		t.Fatalf("after claim: %+v", claimed)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+task.ID+"/complete",
		CompleteTaskRequest{Technician: "Teguh", NIP: "199105012015031002"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: %d", resp.StatusCode)
	}
	done := decode[TaskDTO](t, resp)
	if done.Status != "done" || done.CompletedAt == "" {
		t.Fatalf("after complete: %+v", done)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/archive?q=Budi", nil)
	archived := decode[[]TaskDTO](t, resp)
	if len(archived) != 1 || archived[0].ID != task.ID {
		t.Fatalf("archive = %+v", archived)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/stats", nil)
	stats := decode[[]StatsDTO](t, resp)
	if len(stats) != 1 || stats[0].Technician != "Teguh" || stats[0].Completed != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	// The completing technician's staff number is now remembered.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/profiles/Teguh", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: %d", resp.StatusCode)
	}
	profile := decode[ProfileDTO](t, resp)
	if profile.NIP != "199105012015031002" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestSubmitTask_ValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	body := submitBody("")
	body.Patients[0].RecordNumber = "123" // too short
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTaskErrors_MapToStatuses(t *testing.T) {
	// GIVEN: Missing tasks and lifecycle conflicts
	// WHEN: Claiming and completing wrongly over HTTP
	// THEN: 404 for unknown ids, 409 for conflicts, 400 for bad input

	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks/no-such-task/claim",
		ClaimTaskRequest{Technician: "Teguh"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("claim unknown: %d", resp.StatusCode)
	}

	created := decode[TaskDTO](t, doJSON(t, http.MethodPost, srv.URL+"/api/tasks", submitBody("")))

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/claim",
		ClaimTaskRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("claim without technician: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/complete",
		CompleteTaskRequest{Technician: "Teguh"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("complete queued task: %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/claim",
		ClaimTaskRequest{Technician: "Udin"})
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks/"+created.ID+"/complete",
		CompleteTaskRequest{Technician: "Teguh"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("complete by wrong technician: %d", resp.StatusCode)
	}
}

func TestRecentTasks_InvalidLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/tasks/recent?limit=zero", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetProfile_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/profiles/Nobody", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_ListAndLoad(t *testing.T) {
	// GIVEN: A fresh system
	// WHEN: Loading demo-month and then empty
	// THEN: The demo fills roster, queue, and archive; empty clears duty

	srv, _ := newTestServer(t)

	scenarios := decode[[]ScenarioDTO](t, doJSON(t, http.MethodGet, srv.URL+"/api/scenarios", nil))
	if len(scenarios) != 2 {
		t.Fatalf("scenarios = %+v", scenarios)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{Name: "demo-month"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load demo-month: %d", resp.StatusCode)
	}

	entries := decode[[]RosterEntryDTO](t, doJSON(t, http.MethodGet, srv.URL+"/api/roster/entries", nil))
	if len(entries) != 7*31 {
		t.Fatalf("demo roster entries = %d", len(entries))
	}

	recent := decode[[]TaskDTO](t, doJSON(t, http.MethodGet, srv.URL+"/api/tasks/recent", nil))
	if len(recent) != 2 {
		t.Fatalf("demo tasks = %d", len(recent))
	}

	archive := decode[[]TaskDTO](t, doJSON(t, http.MethodGet, srv.URL+"/api/archive", nil))
	if len(archive) != 1 {
		t.Fatalf("demo archive = %d", len(archive))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{Name: "empty"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("load empty: %d", resp.StatusCode)
	}

	duty := decode[DutyDTO](t, doJSON(t, http.MethodGet,
		srv.URL+fmt.Sprintf("/api/roster/active?at=%s", "2026-08-05T10:00:00Z"), nil))
	if duty.Status != "no_schedule" {
		t.Fatalf("after empty scenario: %+v", duty)
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{Name: "nope"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
