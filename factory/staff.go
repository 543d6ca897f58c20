/*
Package factory provides JSON to Go staff-roster configuration conversion.

PURPOSE:
  Converts a JSON staff definition into a roster.Config. This enables the
  clinic to adjust its technician list without code changes - the IT lead
  edits a JSON file, and the factory produces the alias table and duty
  special cases the engine runs on.

JSON SCHEMA:
  {
    "timezone": "Asia/Jakarta",
    "late_afternoon": "Udin",
    "staff": [
      {"id": "Teguh", "aliases": ["teguh"]},
      {"id": "Isfan", "aliases": ["isfan", "fajar isfan"]}
    ]
  }

KEY FEATURES:
  - Alias order is preserved: first match in file order wins, which is
    the documented disambiguation policy
  - A staff entry with no aliases gets its own id as the alias fragment
  - Ships the default clinic roster as a preset

USAGE:
  cfg, err := factory.ParseStaffConfig(jsonBytes)
  // or the built-in default
  cfg := factory.DefaultStaffConfig()

SEE ALSO:
  - roster/types.go: the Config this produces
  - roster/alias.go: how the alias table is consulted
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fajarisfan/sirs-rme-pro/roster"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// StaffJSON is the JSON representation of the clinic staff configuration.
type StaffJSON struct {
	Timezone      string        `json:"timezone,omitempty"`
	LateAfternoon string        `json:"late_afternoon,omitempty"`
	Staff         []StaffMember `json:"staff"`
}

// StaffMember is one technician: canonical id plus the full-name
// fragments that identify them in the uploaded grid.
type StaffMember struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
}

// DefaultTimezone is the clinic's operating timezone.
const DefaultTimezone = "Asia/Jakarta"

// =============================================================================
// PARSING
// =============================================================================

// ParseStaffConfig converts a JSON staff definition into a roster.Config.
func ParseStaffConfig(data []byte) (roster.Config, error) {
	var sj StaffJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return roster.Config{}, fmt.Errorf("invalid staff config: %w", err)
	}
	return FromJSON(sj)
}

// FromJSON builds a roster.Config from the parsed schema.
func FromJSON(sj StaffJSON) (roster.Config, error) {
	if len(sj.Staff) == 0 {
		return roster.Config{}, fmt.Errorf("staff config defines no staff")
	}

	tz := sj.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return roster.Config{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	var aliases []roster.Alias
	known := make(map[string]bool)
	for _, m := range sj.Staff {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return roster.Config{}, fmt.Errorf("staff entry with empty id")
		}
		known[id] = true

		frags := m.Aliases
		if len(frags) == 0 {
			frags = []string{id}
		}
		for _, f := range frags {
			aliases = append(aliases, roster.Alias{Fragment: f, Person: roster.PersonID(id)})
		}
	}

	if sj.LateAfternoon != "" && !known[sj.LateAfternoon] {
		return roster.Config{}, fmt.Errorf("late_afternoon %q is not a configured staff id", sj.LateAfternoon)
	}

	return roster.Config{
		Aliases:       aliases,
		Location:      loc,
		LateAfternoon: roster.PersonID(sj.LateAfternoon),
	}, nil
}

// =============================================================================
// DEFAULT CLINIC ROSTER
// =============================================================================

// DefaultStaffJSON is the shipped clinic technician roster.
func DefaultStaffJSON() StaffJSON {
	names := []string{"Isfan", "Udin", "Rey", "Jaka", "Teguh", "Ferdi", "Hisyam"}
	members := make([]StaffMember, len(names))
	for i, n := range names {
		members[i] = StaffMember{ID: n}
	}
	return StaffJSON{
		Timezone:      DefaultTimezone,
		LateAfternoon: "Udin",
		Staff:         members,
	}
}

// DefaultStaffConfig returns the shipped roster as an engine config.
func DefaultStaffConfig() roster.Config {
	cfg, err := FromJSON(DefaultStaffJSON())
	if err != nil {
		// The shipped preset is static; failing here is a programming error.
		panic(err)
	}
	return cfg
}
