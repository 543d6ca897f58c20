/*
store.go - Persistence interface for roster entries

PURPOSE:
  Defines the contract between the engine and the backing store. The
  roster is written rarely (one bulk replace per upload) and read often
  (every duty resolution), so the interface is deliberately narrow:
  replace-all plus two read queries.

REPLACE CONTRACT:
  ReplaceAll is the ONLY write. It must be atomic with respect to
  concurrent readers: a reader observes either the complete old roster
  or the complete new one, never a mix. Implementations publish the new
  entries with a swap (staging table rename, pointer swap), not an
  in-place delete+insert.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite (staging-table swap)
  - roster/store/memory.go: in-memory pointer swap for tests/dev

SEE ALSO:
  - ingest.go: the only caller of ReplaceAll
  - resolver.go: the read side
*/
package roster

import (
	"context"
	"io"
)

// Store persists roster entries.
type Store interface {
	// ReplaceAll atomically replaces every stored entry with the given
	// set. Readers never observe a partial mix of old and new.
	ReplaceAll(ctx context.Context, entries []Entry) error

	// EntriesForDays returns all entries whose Day is in days, in no
	// particular order.
	EntriesForDays(ctx context.Context, days ...int) ([]Entry, error)

	// Count returns the total number of stored entries. Zero means no
	// schedule has been loaded.
	Count(ctx context.Context) (int, error)
}

// TableExtractor turns an uploaded tabular document into the first table of
// its first page: ordered rows of ordered cell strings, possibly ragged,
// empty cells preserved as "".
type TableExtractor interface {
	ExtractTable(r io.Reader) ([][]string, error)
}
