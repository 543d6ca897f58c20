/*
ingest.go - Roster grid ingestion

PURPOSE:
  Turns an uploaded monthly shift grid into normalized Entry rows and
  atomically replaces the backing store with them. Each successful
  ingestion is a full refresh: nothing from the previous upload survives.

GRID LAYOUT (as produced by the clinic's scheduling spreadsheet):
  - First table of the first sheet is the schedule
  - Row 0 is a header (it never matches an alias, so it falls out naturally)
  - Column 0 is ignored (row numbers)
  - Column 1 is the staff full name, possibly spread over several lines
  - Columns 2..32 are days 1..31 of the month (column index - 1 == day)

FAILURE POLICY:
  Ingest returns a plain bool. Every failure mode - unreadable document,
  no table, zero matched rows - leaves the stored roster untouched and
  reports false. No error ever propagates to the caller; details go to
  the log only.

SEE ALSO:
  - alias.go: name matching
  - store.go: ReplaceAll contract
*/
package roster

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// nameColumn and firstDayColumn describe the fixed grid layout.
const (
	nameColumn     = 1
	firstDayColumn = 2
)

// Ingester parses uploaded schedule grids into the roster store.
type Ingester struct {
	Extractor TableExtractor
	Store     Store
	Config    Config

	// Invalidate, if set, is called after every successful replace so a
	// cached resolver result can be discarded. See cache.go.
	Invalidate func()
}

// NewIngester wires an ingester over the given extractor and store.
func NewIngester(ex TableExtractor, st Store, cfg Config) *Ingester {
	return &Ingester{Extractor: ex, Store: st, Config: cfg}
}

// Ingest reads a schedule document and replaces the roster with its
// contents. It reports success only when at least one entry was parsed
// and the atomic replace committed. On any failure the previous roster
// remains in place.
func (ing *Ingester) Ingest(ctx context.Context, r io.Reader) bool {
	entries, err := ing.parse(r)
	if err != nil {
		logrus.WithError(err).Warn("roster ingestion failed")
		return false
	}

	if err := ing.Store.ReplaceAll(ctx, entries); err != nil {
		logrus.WithError(err).Error("roster replace failed")
		return false
	}

	if ing.Invalidate != nil {
		ing.Invalidate()
	}

	logrus.WithField("entries", len(entries)).Info("roster replaced")
	return true
}

// parse extracts and normalizes the grid. It returns ErrNoTable when the
// document has no usable table and ErrNoEntries when nothing matched.
func (ing *Ingester) parse(r io.Reader) (entries []Entry, err error) {
	// The extractor runs over arbitrary uploaded bytes; a corrupt file
	// must degrade to an ingestion failure, not a crash.
	defer func() {
		if rec := recover(); rec != nil {
			entries = nil
			err = fmt.Errorf("%w: panic during extraction: %v", ErrNoTable, rec)
		}
	}()

	rows, err := ing.Extractor.ExtractTable(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTable, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTable
	}

	for _, row := range rows {
		if len(row) <= nameColumn {
			continue
		}
		name := NormalizeName(row[nameColumn])
		if name == "" {
			continue
		}
		person, ok := MatchAlias(ing.Config.Aliases, name)
		if !ok {
			// Header rows and unknown staff land here. Tolerated, not
			// surfaced: the grid regularly carries interns and blanks.
			continue
		}

		for day := MinDay; day <= MaxDay; day++ {
			col := day + firstDayColumn - 1
			if col >= len(row) {
				break
			}
			code := NormalizeCode(row[col])
			if code == "" {
				continue
			}
			entries = append(entries, Entry{Person: person, Day: day, Code: code})
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return entries, nil
}
