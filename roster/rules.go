/*
rules.go - Shift-code duty windows

PURPOSE:
  The ordered rule table that maps a roster entry to its active hour
  window. Shift codes in the clinic's grid are messy: "PS" means a
  morning-plus-afternoon double, "M M" a long night, "/L" a swapped day
  off. Rather than a chain of string-containment conditionals, the
  precedence is an explicit table evaluated top to bottom with
  first-match-wins, so the overlap between patterns (a code can contain
  both "P" and "S") is visible and testable.

SHIFT VOCABULARY (Indonesian roster conventions):
  P  = pagi (morning)        07:00 - 16:00
  S  = siang/sore (afternoon) 14:00 - 21:00 (22:00 for the late staffer)
  M  = malam (night)         21:00 - 07:00 next day
  L  = libur (day off), OFF, LL, /L: never on duty

NIGHT-SHIFT CONTINUATION:
  A night entry on day D covers D 21:00 through D+1 07:00. The resolver
  therefore also fetches yesterday's entries: an "M" dated yesterday puts
  its person on duty until 07:00 this morning.

SEE ALSO:
  - resolver.go: applies these rules to the fetched entries
*/
package roster

import "strings"

// query is the evaluated instant, pre-split into the pieces the rules need.
type query struct {
	today     int
	yesterday int
	hour      int
}

// rule is one row of the duty table. match selects the rule by shift code;
// active decides whether the entry's person is on duty at the queried
// instant. The first rule whose match returns true claims the entry.
type rule struct {
	name   string
	match  func(code string) bool
	active func(e Entry, q query, cfg Config) bool
}

const (
	nightEnd       = 7  // night shift releases at 07:00
	nightStart     = 21 // night shift picks up at 21:00
	morningStart   = 7
	morningEnd     = 16
	afternoonStart = 14
	afternoonEnd   = 21
	afternoonLate  = 22 // extended end for the designated late staffer
)

// dutyRules is the precedence table. Order matters: the night check runs
// before the morning/combined check, which runs before the afternoon
// check, so a code like "MS" resolves as night, and "PS" as morning.
var dutyRules = []rule{
	{
		name:  "night",
		match: func(code string) bool { return strings.Contains(code, "M") },
		active: func(e Entry, q query, _ Config) bool {
			if e.Day == q.yesterday && q.hour < nightEnd {
				return true // last night's shift running into this morning
			}
			return e.Day == q.today && q.hour >= nightStart
		},
	},
	{
		name:  "morning",
		match: func(code string) bool { return strings.Contains(code, "P") },
		active: func(e Entry, q query, _ Config) bool {
			return e.Day == q.today && q.hour >= morningStart && q.hour < morningEnd
		},
	},
	{
		name:  "afternoon",
		match: func(code string) bool { return code == "S" },
		active: func(e Entry, q query, cfg Config) bool {
			limit := afternoonEnd
			if e.Person == cfg.LateAfternoon {
				limit = afternoonLate
			}
			return e.Day == q.today && q.hour >= afternoonStart && q.hour < limit
		},
	},
	{
		// Explicit non-working codes. They carry none of the letters the
		// rules above look for, but listing them keeps the vocabulary
		// closed on paper and guards against future pattern widening.
		name: "off",
		match: func(code string) bool {
			switch code {
			case "L", "LL", "/L", "OFF", "":
				return true
			}
			return false
		},
		active: func(Entry, query, Config) bool { return false },
	},
}

// onDuty reports whether a single entry puts its person on duty at the
// queried instant. Codes matching no rule fail closed.
func onDuty(e Entry, q query, cfg Config) bool {
	for _, r := range dutyRules {
		if r.match(e.Code) {
			return r.active(e, q, cfg)
		}
	}
	return false
}
