package manifest

// Match is a requested identifier together with the record it resolved to.
type Match struct {
	Identifier string
	Entry      Entry
}

// Resolution is the outcome of resolving a list of requested identifiers.
type Resolution struct {
	// Matched holds one match per distinct found identifier, in request order.
	Matched []Match
	// Unmatched holds the distinct identifiers with no record, in request order.
	Unmatched []string
}

// Blocks returns the matched blocks in request order.
func (r Resolution) Blocks() []RawBlock {
	blocks := make([]RawBlock, len(r.Matched))
	for i, m := range r.Matched {
		blocks[i] = m.Entry.Block
	}
	return blocks
}

// Resolve looks up each requested identifier verbatim (case-sensitive,
// no normalization) and returns the matching blocks in request order.
// Missing identifiers are collected, never fatal. An identifier requested
// more than once is resolved once.
func (ix *Index) Resolve(requested []string) Resolution {
	var res Resolution
	seen := make(map[string]bool, len(requested))

	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true

		entry, ok := ix.Lookup(id)
		if !ok {
			res.Unmatched = append(res.Unmatched, id)
			continue
		}
		res.Matched = append(res.Matched, Match{Identifier: id, Entry: entry})
	}

	return res
}
