// Package manifest turns the extracted text of an air-cargo invoice into
// shipment records and resolves requested shipment identifiers to the exact
// text that has to be redacted.
//
// # Pipeline
//
// Three pure steps run over already-extracted page text:
//
//	blocks, err := manifest.Segment(pageTexts)   // text -> record blocks
//	ix, err := manifest.NewIndex(blocks)         // blocks -> identifier index
//	res := ix.Resolve([]string{"123-12345678"})  // identifiers -> blocks
//
// # Record Format
//
// A record starts with a header of five whitespace-separated fields:
//
//	<code> <IATA prefix: 3 digits> <MAWB: 8 digits> <quantity> <weight>
//
// and ends at the first whole word "Total" after the header. Without a
// terminator it runs to the next header or to the end of the page.
//
// The composite identifier of a record is "<IATA prefix>-<MAWB>", for
// example "123-12345678".
//
// # Duplicates
//
// Identifiers are not guaranteed to be unique in an invoice. The index keeps
// the first record in document order for each identifier; later records with
// the same identifier are reported by [Index.Duplicates] and never resolved.
//
// # Limitations
//
// Pages are segmented independently. A record whose header and terminator
// sit on different pages is cut at the page break.
package manifest
