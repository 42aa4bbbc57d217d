package document

import (
	"context"
	"errors"

	"github.com/tsawler/redact/model"
)

var (
	// ErrUnreadable is returned when a file cannot be opened or parsed as a
	// PDF, or when a page's text cannot be extracted.
	ErrUnreadable = errors.New("document unreadable")

	// ErrPageRange is returned for page numbers outside 1..PageCount.
	ErrPageRange = errors.New("page out of range")

	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("document closed")

	// ErrOutputExists is returned by Save when the destination exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrSameFile is returned by Save when the destination is the source.
	ErrSameFile = errors.New("output would overwrite the source document")
)

// Engine is an open document that can report page text, locate literals
// on a page, queue filled rectangles and write a new copy of itself in
// which the text under those rectangles is removed and the rectangles are
// drawn on top. Pages are numbered from 1.
type Engine interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageTexts returns the plain text of every page, in page order.
	PageTexts(ctx context.Context) ([]string, error)

	// Search returns the regions covering every occurrence of literal on
	// the page. No occurrence is not an error.
	Search(page int, literal string) ([]model.BBox, error)

	// Fill queues an opaque rectangle for the page and reports whether it
	// did. An empty region is skipped. Nothing is written until Save.
	Fill(page int, region model.BBox, color model.Color) (bool, error)

	// Save writes the document, with all queued fills applied, to path. It
	// never overwrites an existing file or the source.
	Save(ctx context.Context, path string) error

	// Close releases the document.
	Close() error
}

// Fill is a queued rectangle.
type Fill struct {
	Region model.BBox
	Color  model.Color
}
