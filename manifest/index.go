package manifest

import "fmt"

// Entry pairs a block with its parsed header.
type Entry struct {
	Block  RawBlock
	Record Record
}

// Identifier returns the entry's composite identifier.
func (e Entry) Identifier() string {
	return e.Record.Identifier()
}

// Duplicate describes a record whose identifier was already indexed.
// Positions are indexes into Entries.
type Duplicate struct {
	Identifier string
	First      int
	Repeat     int
}

// Index maps composite identifiers to record blocks. When several blocks
// share an identifier the first one in document order is the one indexed;
// later ones stay in Entries and are listed by Duplicates.
type Index struct {
	entries    []Entry
	byID       map[string]int
	duplicates []Duplicate
}

// NewIndex parses every block header and builds the identifier index.
// It fails only when a block does not start with a header, which cannot
// happen for blocks returned by Segment.
func NewIndex(blocks []RawBlock) (*Index, error) {
	ix := &Index{
		entries: make([]Entry, 0, len(blocks)),
		byID:    make(map[string]int, len(blocks)),
	}

	for i, b := range blocks {
		rec, err := b.Header()
		if err != nil {
			return nil, fmt.Errorf("block %d on page %d: %w", i, b.Page, err)
		}
		ix.entries = append(ix.entries, Entry{Block: b, Record: rec})

		id := rec.Identifier()
		if first, ok := ix.byID[id]; ok {
			ix.duplicates = append(ix.duplicates, Duplicate{Identifier: id, First: first, Repeat: i})
			continue
		}
		ix.byID[id] = i
	}

	return ix, nil
}

// Len returns the number of indexed records, duplicates included.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns all records in document order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Lookup returns the first record with the given identifier.
func (ix *Index) Lookup(id string) (Entry, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// Position returns the position in Entries of the record that id resolves to.
func (ix *Index) Position(id string) (int, bool) {
	i, ok := ix.byID[id]
	return i, ok
}

// Identifiers returns the distinct identifiers in document order.
func (ix *Index) Identifiers() []string {
	ids := make([]string, 0, len(ix.byID))
	for i, e := range ix.entries {
		id := e.Identifier()
		if ix.byID[id] == i {
			ids = append(ids, id)
		}
	}
	return ids
}

// Duplicates lists records shadowed by an earlier record with the same identifier.
func (ix *Index) Duplicates() []Duplicate {
	out := make([]Duplicate, len(ix.duplicates))
	copy(out, ix.duplicates)
	return out
}
