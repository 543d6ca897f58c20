/*
Package roster provides the shift-roster resolution engine.

PURPOSE:
  This package contains the two core pieces of the system: ingesting an
  uploaded monthly shift grid into normalized (person, day, code) entries,
  and resolving which technicians are on duty at a given wall-clock instant,
  including night shifts that continue past midnight.

KEY CONCEPTS IN THIS FILE (types.go):
  - PersonID: A short canonical staff identifier (e.g. "Teguh")
  - Entry: One normalized roster cell: person + day-of-month + shift code
  - Result/Status: Duty resolution output, distinguishing "no schedule
    loaded" from "nobody currently on duty"

DESIGN PRINCIPLES:
  1. Fail closed: unrecognized shift codes never put anyone on duty
  2. Full refresh: ingestion replaces the whole roster atomically or not at all
  3. Pure resolution: the resolver reads entries and computes, never mutates

USAGE:
  code := roster.NormalizeCode("p s\n")  // "PS"
  entry := roster.Entry{Person: "Teguh", Day: 12, Code: code}

SEE ALSO:
  - alias.go: Full-name to PersonID mapping
  - ingest.go: Table-to-entries ingestion
  - resolver.go: On-duty computation
*/
package roster

import (
	"strings"
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PersonID is the short canonical identifier for a staff member.
type PersonID string

// =============================================================================
// ROSTER ENTRY - One cell of the monthly shift grid
// =============================================================================

// Entry records that a person has a shift code on a day of the month.
// Day is 1..31 with no calendar validation: day 31 in a 30-day month is
// accepted and simply never matches a real date.
type Entry struct {
	Person PersonID
	Day    int
	Code   string
}

// MinDay and MaxDay bound the day columns of the roster grid.
const (
	MinDay = 1
	MaxDay = 31
)

// NormalizeCode canonicalizes a raw shift-code cell: newlines and embedded
// whitespace removed, uppercased. An empty result means "no shift recorded".
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

// NormalizeName collapses the newlines that multi-line name cells carry into
// single spaces and trims the result.
func NormalizeName(raw string) string {
	s := strings.ReplaceAll(raw, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// =============================================================================
// DUTY RESOLUTION RESULT
// =============================================================================

// Status distinguishes the two empty-looking resolver outcomes.
type Status string

const (
	// StatusOK means the roster has data; Staff may still be empty when
	// nobody's shift window covers the queried instant.
	StatusOK Status = "ok"

	// StatusNoSchedule means the roster store holds no entries at all,
	// typically because no grid has been imported this month.
	StatusNoSchedule Status = "no_schedule"
)

// Result is the duty resolver output: a deduplicated, sorted set of staff
// on duty at the queried instant, plus the schedule status.
type Result struct {
	Status Status
	Staff  []PersonID
}

// =============================================================================
// ENGINE CONFIGURATION
// =============================================================================

// Config carries the fixed clinic-specific knowledge the engine needs:
// the alias table mapping grid names to staff, the timezone the clinic
// operates in, and the one staffer whose afternoon shift runs an hour later.
type Config struct {
	Aliases []Alias

	// Location is the clinic's operating timezone. Duty windows are defined
	// in local clinic hours, so resolution must happen in this location.
	Location *time.Location

	// LateAfternoon is the designated staffer whose "S" shift ends at 22:00
	// instead of 21:00. A fixed domain rule, not derived from data.
	LateAfternoon PersonID
}
