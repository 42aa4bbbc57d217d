// Package suggest offers "did you mean" hints for identifiers that were
// requested but not found, using an in-memory bleve index over the
// identifiers the document does contain.
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
)

const (
	idField = "id"

	// MaxFuzziness is the largest edit distance bleve accepts for a fuzzy
	// term query.
	MaxFuzziness = 2
)

// Index is a fuzzy lookup over a fixed set of identifiers.
type Index struct {
	mu        sync.RWMutex
	index     bleve.Index
	fuzziness int
	closed    bool
}

// New indexes ids in memory. Duplicates and empty strings are ignored.
func New(ids []string, fuzziness int) (*Index, error) {
	if fuzziness <= 0 || fuzziness > MaxFuzziness {
		fuzziness = MaxFuzziness
	}

	indexMapping := bleve.NewIndexMapping()
	fieldMapping := bleve.NewTextFieldMapping()
	fieldMapping.Analyzer = keyword.Name
	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt(idField, fieldMapping)
	indexMapping.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion index: %w", err)
	}

	batch := idx.NewBatch()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if err := batch.Index(id, map[string]interface{}{idField: id}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index %s: %w", id, err)
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to execute batch: %w", err)
		}
	}

	return &Index{index: idx, fuzziness: fuzziness}, nil
}

// Suggest returns up to limit indexed identifiers within the configured edit
// distance of id, best first. An exact hit is not a suggestion and is left
// out.
func (x *Index) Suggest(ctx context.Context, id string, limit int) ([]string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, fmt.Errorf("suggestion index is closed")
	}
	id = strings.TrimSpace(id)
	if id == "" || limit <= 0 {
		return nil, nil
	}

	q := bleve.NewFuzzyQuery(id)
	q.SetField(idField)
	q.SetFuzziness(x.fuzziness)

	req := bleve.NewSearchRequest(q)
	req.Size = limit + 1

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("suggestion search failed: %w", err)
	}

	hits := res.Hits
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	out := make([]string, 0, limit)
	for _, hit := range hits {
		if hit.ID == id {
			continue
		}
		out = append(out, hit.ID)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}
