/*
scenarios.go - Demo dataset loaders

PURPOSE:
  Seeds the system with ready-made data for demos and manual testing:
  a full month's shift grid for the whole technician roster plus a few
  queued and completed deletion requests. Loading goes through the same
  ingestion and submission paths production traffic uses, so a demo
  exercises the real machinery.

SCENARIOS:
  demo-month  Current month's roster (rotating P/S/M/L pattern) + sample tasks
  empty       Clears the roster so the "no_schedule" paths can be shown

SEE ALSO:
  - handlers.go: ListScenarios / LoadScenario routes
  - roster/ingest.go: the path demo rosters are loaded through
*/
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// staticTable satisfies roster.TableExtractor with a fixed grid, letting
// a scenario reuse the real ingestion path without a spreadsheet file.
type staticTable [][]string

func (t staticTable) ExtractTable(io.Reader) ([][]string, error) {
	return t, nil
}

// demoNames are the grid's full-name cells; ingestion maps them back to
// short ids through the alias table, same as a real upload. Order is
// fixed so repeated loads produce identical rosters.
var demoNames = []string{
	"Fajar Isfan Maulana",
	"Syamsudin Nur",
	"Reynaldi Pratama",
	"Jaka Permana",
	"Teguh Adi Pradana",
	"Ferdiansyah Putra",
	"Hisyam Abdullah",
}

// ListScenarios returns the available demo datasets.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := []ScenarioDTO{
		{
			Name:        "demo-month",
			Description: "Full month roster for all technicians plus sample deletion requests",
			Current:     h.currentScenario == "demo-month",
		},
		{
			Name:        "empty",
			Description: "No roster loaded; duty resolution reports no_schedule",
			Current:     h.currentScenario == "empty",
		},
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the selected demo dataset.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	switch req.Name {
	case "demo-month":
		if err := h.loadDemoMonth(r); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
			return
		}
	case "empty":
		if err := h.Store.ReplaceAll(r.Context(), nil); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear roster", err)
			return
		}
		if h.Ingester.Invalidate != nil {
			h.Ingester.Invalidate()
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.Name), nil)
		return
	}

	h.currentScenario = req.Name
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.Name})
}

// loadDemoMonth ingests a synthetic grid and submits sample requests.
func (h *Handler) loadDemoMonth(r *http.Request) error {
	ctx := r.Context()

	seeder := &roster.Ingester{
		Extractor:  staticTable(demoGrid()),
		Store:      h.Ingester.Store,
		Config:     h.Ingester.Config,
		Invalidate: h.Ingester.Invalidate,
	}
	if !seeder.Ingest(ctx, nil) {
		return fmt.Errorf("demo roster ingestion failed")
	}

	for i, in := range demoTasks() {
		task, err := h.Service.Submit(ctx, in)
		if err != nil {
			return fmt.Errorf("demo task %d: %w", i, err)
		}
		// Complete the first task so the archive and stats have content.
		if i == 0 {
			tech := task.AssignedTo
			if tech == "" {
				tech = "Teguh"
			}
			if _, err := h.Service.Claim(ctx, task.ID, tech); err != nil {
				return fmt.Errorf("demo claim: %w", err)
			}
			if _, err := h.Service.Complete(ctx, task.ID, tech, "199105012015031002"); err != nil {
				return fmt.Errorf("demo complete: %w", err)
			}
		}
	}
	return nil
}

// demoGrid builds the synthetic schedule: header row, then one row per
// technician with a rotating P / S / M / L pattern shifted per person so
// every hour of the day has someone on duty.
func demoGrid() [][]string {
	header := make([]string, 33)
	header[0] = "No"
	header[1] = "Nama Petugas"
	for d := 1; d <= 31; d++ {
		header[d+1] = fmt.Sprintf("%d", d)
	}

	pattern := []string{"P", "S", "M", "L"}
	rows := [][]string{header}

	for i, fullName := range demoNames {
		row := make([]string, 33)
		row[0] = fmt.Sprintf("%d", i+1)
		row[1] = fullName
		for d := 1; d <= 31; d++ {
			row[d+1] = pattern[(d+i)%len(pattern)]
		}
		rows = append(rows, row)
	}
	return rows
}

func demoTasks() []workflow.SubmitInput {
	visit := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	return []workflow.SubmitInput{
		{
			Requester: workflow.Requester{Name: "Siti Rahma", NIP: "198802142011012003", Unit: "Poli Umum"},
			Patients: []workflow.Patient{
				{Name: "Budi Santoso", RecordNumber: "000123456", VisitDate: visit, Reason: "Entri ganda pada kunjungan yang sama"},
			},
		},
		{
			Requester: workflow.Requester{Name: "Andi Wijaya", NIP: "199201032014071001", Unit: "IGD"},
			Patients: []workflow.Patient{
				{Name: "Dewi Lestari", RecordNumber: "000654321", VisitDate: visit, Reason: "Salah input identitas pasien"},
				{Name: "Rudi Hartono", RecordNumber: "000654322", VisitDate: visit, Reason: "Data masuk ke rekam medis pasien lain"},
			},
		},
	}
}
