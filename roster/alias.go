package roster

import "strings"

// =============================================================================
// ALIAS TABLE - Grid full names to canonical staff ids
// =============================================================================

// Alias maps a full-name fragment appearing in the uploaded grid to a staff
// identifier. Matching is case-insensitive substring containment, not exact
// equality: fragment "teguh" matches the cell "Teguh Adi Pradana".
type Alias struct {
	Fragment string
	Person   PersonID
}

// MatchAlias resolves a normalized name cell against the alias table.
// The first matching alias in table order wins; a name containing several
// fragments is therefore deterministic only because the table order is
// fixed. Unmatched names return ("", false) and are dropped by ingestion.
func MatchAlias(aliases []Alias, name string) (PersonID, bool) {
	lower := strings.ToLower(name)
	if lower == "" {
		return "", false
	}
	for _, a := range aliases {
		frag := strings.ToLower(strings.TrimSpace(a.Fragment))
		if frag == "" {
			continue
		}
		if strings.Contains(lower, frag) {
			return a.Person, true
		}
	}
	return "", false
}
