/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the roster store and the workflow stores (tasks, profiles)
  on a single SQLite database, the way the clinic deployment runs: one
  file, WAL mode, many readers, occasional writes.

INTERFACES IMPLEMENTED:
  roster.Store:          monthly shift grid (replace-all + day queries)
  workflow.TaskStore:    deletion-request queue and archive
  workflow.ProfileStore: name -> staff-number prefill table

ROSTER REPLACE - SWAP, NOT DELETE+INSERT:
  ReplaceAll builds a staging table, fills it, then drops the live table
  and renames the staging one into place - all inside one transaction.
  Concurrent readers therefore see either the complete old roster or the
  complete new one, never a partial mix.

KEY TABLES:
  roster_entries:  (person, day, shift_code) - no uniqueness, full refresh
  tasks:           queue rows; patients stored as a JSON column
  profiles:        name -> nip upsert table

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./rme_system.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - roster/store.go: interface definitions and the replace contract
  - roster/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a second pooled connection would also see
	// a separate database entirely when dbPath is ":memory:".
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Monthly shift grid. No uniqueness: the table is fully replaced on
	-- every successful import, never patched row by row.
	CREATE TABLE IF NOT EXISTS roster_entries (
		person TEXT NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),
		shift_code TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_roster_entries_day ON roster_entries(day);

	-- Deletion-request queue. Patients ride along as JSON, mirroring the
	-- 1..4 records a single request bundles.
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		requester_name TEXT NOT NULL,
		requester_nip TEXT NOT NULL,
		unit TEXT NOT NULL,
		patients_json TEXT NOT NULL,
		assigned_to TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		file_name TEXT NOT NULL,
		primary_record TEXT NOT NULL,
		display_name TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		completed_at TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_assigned ON tasks(assigned_to);
	CREATE INDEX IF NOT EXISTS idx_tasks_submitted ON tasks(submitted_at DESC);

	-- Staff-number prefill table.
	CREATE TABLE IF NOT EXISTS profiles (
		name TEXT PRIMARY KEY,
		nip TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROSTER STORE - roster.Store
// =============================================================================

// ReplaceAll swaps the roster for the given entries atomically: fill a
// staging table, then drop-and-rename inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, entries []roster.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin replace: %w", err)
	}
	defer tx.Rollback()

	stage := []string{
		`DROP TABLE IF EXISTS roster_entries_staging`,
		`CREATE TABLE roster_entries_staging (
			person TEXT NOT NULL,
			day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),
			shift_code TEXT NOT NULL
		)`,
	}
	for _, q := range stage {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to stage roster: %w", err)
		}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO roster_entries_staging (person, day, shift_code) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare staging insert: %w", err)
	}
	defer insert.Close()

	for _, e := range entries {
		if _, err := insert.ExecContext(ctx, string(e.Person), e.Day, e.Code); err != nil {
			return fmt.Errorf("failed to stage entry: %w", err)
		}
	}

	// The publish point: readers before the commit see the old table,
	// readers after see the renamed staging table.
	swap := []string{
		`DROP TABLE roster_entries`,
		`ALTER TABLE roster_entries_staging RENAME TO roster_entries`,
		`CREATE INDEX IF NOT EXISTS idx_roster_entries_day ON roster_entries(day)`,
	}
	for _, q := range swap {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to swap roster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// EntriesForDays returns all entries for the given days of the month.
func (s *Store) EntriesForDays(ctx context.Context, days ...int) ([]roster.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(days) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(days)), ",")
	args := make([]any, len(days))
	for i, d := range days {
		args[i] = d
	}

	return s.queryEntries(ctx,
		`SELECT person, day, shift_code FROM roster_entries WHERE day IN (`+placeholders+`)`,
		args...)
}

// Count returns the total number of roster entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count roster entries: %w", err)
	}
	return n, nil
}

// AllEntries returns the whole stored roster, ordered for stable display.
func (s *Store) AllEntries(ctx context.Context) ([]roster.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx,
		`SELECT person, day, shift_code FROM roster_entries ORDER BY person, day`)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]roster.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster: %w", err)
	}
	defer rows.Close()

	var entries []roster.Entry
	for rows.Next() {
		var e roster.Entry
		var person string
		if err := rows.Scan(&person, &e.Day, &e.Code); err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		e.Person = roster.PersonID(person)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// TASK STORE - workflow.TaskStore
// =============================================================================

// Create inserts a new task.
func (s *Store) Create(ctx context.Context, t workflow.Task) error {
	patients, err := json.Marshal(t.Patients)
	if err != nil {
		return fmt.Errorf("failed to encode patients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, requester_name, requester_nip, unit, patients_json,
			assigned_to, status, file_name, primary_record, display_name,
			submitted_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Requester.Name, t.Requester.NIP, t.Requester.Unit, string(patients),
		string(t.AssignedTo), string(t.Status), t.FileName, t.PrimaryRecord(), t.DisplayName(),
		formatTime(t.SubmittedAt), formatTime(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Get returns a task by id, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*workflow.Task, error) {
	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// Update rewrites a task row.
func (s *Store) Update(ctx context.Context, t workflow.Task) error {
	patients, err := json.Marshal(t.Patients)
	if err != nil {
		return fmt.Errorf("failed to encode patients: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET requester_name = ?, requester_nip = ?, unit = ?,
			patients_json = ?, assigned_to = ?, status = ?, file_name = ?,
			primary_record = ?, display_name = ?, submitted_at = ?, completed_at = ?
		WHERE id = ?`,
		t.Requester.Name, t.Requester.NIP, t.Requester.Unit,
		string(patients), string(t.AssignedTo), string(t.Status), t.FileName,
		t.PrimaryRecord(), t.DisplayName(), formatTime(t.SubmittedAt), formatTime(t.CompletedAt),
		t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return workflow.ErrTaskNotFound
	}
	return nil
}

// Open returns queued/in-progress tasks the technician may work on.
func (s *Store) Open(ctx context.Context, tech roster.PersonID) ([]workflow.Task, error) {
	if tech == "" {
		return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
			WHERE status IN (?, ?) ORDER BY submitted_at`,
			string(workflow.StatusQueued), string(workflow.StatusInProgress))
	}
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE status IN (?, ?) AND (assigned_to = ? OR assigned_to = '')
		ORDER BY submitted_at`,
		string(workflow.StatusQueued), string(workflow.StatusInProgress), string(tech))
}

// Recent returns the newest tasks, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]workflow.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		ORDER BY submitted_at DESC LIMIT ?`, limit)
}

// Archive returns completed tasks, optionally filtered by display name or
// primary record number substring, newest first.
func (s *Store) Archive(ctx context.Context, q string) ([]workflow.Task, error) {
	if q == "" {
		return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
			WHERE status = ? ORDER BY completed_at DESC`, string(workflow.StatusDone))
	}
	like := "%" + q + "%"
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE status = ? AND (display_name LIKE ? OR primary_record LIKE ?)
		ORDER BY completed_at DESC`, string(workflow.StatusDone), like, like)
}

const taskColumns = `id, requester_name, requester_nip, unit, patients_json,
	assigned_to, status, file_name, submitted_at, completed_at`

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]workflow.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var out []workflow.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTask(rows *sql.Rows) (workflow.Task, error) {
	var (
		t            workflow.Task
		patientsJSON string
		assigned     string
		status       string
		submitted    string
		completed    string
	)
	err := rows.Scan(&t.ID, &t.Requester.Name, &t.Requester.NIP, &t.Requester.Unit,
		&patientsJSON, &assigned, &status, &t.FileName, &submitted, &completed)
	if err != nil {
		return workflow.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}

	if err := json.Unmarshal([]byte(patientsJSON), &t.Patients); err != nil {
		return workflow.Task{}, fmt.Errorf("failed to decode patients: %w", err)
	}
	t.AssignedTo = roster.PersonID(assigned)
	t.Status = workflow.Status(status)
	t.SubmittedAt = parseTime(submitted)
	t.CompletedAt = parseTime(completed)
	return t, nil
}

// =============================================================================
// PROFILE STORE - workflow.ProfileStore
// =============================================================================

// UpsertProfile stores or refreshes a name -> staff-number mapping.
func (s *Store) UpsertProfile(ctx context.Context, p workflow.Profile) error {
	if p.Name == "" || p.NIP == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (name, nip) VALUES (?, ?)`, p.Name, p.NIP)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile, or nil when unknown.
func (s *Store) GetProfile(ctx context.Context, name string) (*workflow.Profile, error) {
	var p workflow.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT name, nip FROM profiles WHERE name = ?`, name).Scan(&p.Name, &p.NIP)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// =============================================================================
// TIME ENCODING
// =============================================================================

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
