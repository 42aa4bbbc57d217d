package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/redact/model"
)

var disableConfigDir sync.Once

// Save writes a copy of the document with every queued fill applied: the
// text under a fill is removed from the page content and the rectangle is
// painted on top. The file is written to a temporary name next to path and
// renamed into place, so a failed save leaves nothing behind.
func (d *PDF) Save(ctx context.Context, path string) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if err := d.checkDestination(path); err != nil {
		return err
	}

	pctx, err := readContext(d.data, d.opts.Password)
	if err != nil {
		return err
	}

	fills := d.Fills()
	removed := 0
	for _, page := range d.filledPages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := redactPage(pctx, page, fills[page])
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		removed += n
	}

	if err := writeAtomic(path, func(f *os.File) error {
		return api.WriteContext(pctx, f)
	}); err != nil {
		return err
	}

	d.opts.Logger.Debug("document saved", "path", path, "pages_filled", len(fills), "glyphs_removed", removed)
	return nil
}

// readContext parses and validates data with pdfcpu.
func readContext(data []byte, password string) (*pdfmodel.Context, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read for writing: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, fmt.Errorf("validate for writing: %w", err)
	}
	return pctx, nil
}

// mergeContents rewrites every page whose content is an array of streams
// to hold one stream with the same content.
func mergeContents(data []byte, password string) ([]byte, error) {
	pctx, err := readContext(data, password)
	if err != nil {
		return nil, err
	}

	for page := 1; page <= pctx.PageCount; page++ {
		pageDict, _, _, err := pctx.PageDict(page, false)
		if err != nil {
			return nil, err
		}
		obj, err := pctx.Dereference(pageDict["Contents"])
		if err != nil {
			return nil, err
		}
		if _, ok := obj.(types.Array); !ok {
			continue
		}

		content, err := pageContent(pctx, pageDict)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		ref, err := newContentStream(pctx, content)
		if err != nil {
			return nil, err
		}
		setContents(pageDict, *ref)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *PDF) checkDestination(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if d.source != "" && abs == d.source {
		return ErrSameFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// redactPage replaces the page content with a single stream: the original
// content with covered text removed, wrapped in q/Q so its graphics state
// cannot leak, followed by the fills. It returns the number of glyphs
// removed.
func redactPage(pctx *pdfmodel.Context, page int, fills []Fill) (int, error) {
	if len(fills) == 0 {
		return 0, nil
	}

	pageDict, _, inherited, err := pctx.PageDict(page, false)
	if err != nil {
		return 0, err
	}
	if pageDict == nil {
		return 0, fmt.Errorf("%w: %d", ErrPageRange, page)
	}

	content, err := pageContent(pctx, pageDict)
	if err != nil {
		return 0, err
	}

	var resources types.Dict
	if inherited != nil {
		resources = inherited.Resources
	}
	regions := make([]model.BBox, len(fills))
	for i, f := range fills {
		regions[i] = f.Region
	}

	scrubbed, removed, err := scrubText(content, regions, pageFonts(pctx, resources))
	if err != nil {
		return 0, fmt.Errorf("rewrite content: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("q\n")
	b.Write(scrubbed)
	b.WriteString("\nQ\n")
	b.Write(overlayContent(fills))

	ref, err := newContentStream(pctx, b.Bytes())
	if err != nil {
		return 0, err
	}
	setContents(pageDict, *ref)
	return removed, nil
}

// pageContent returns the decoded content of every stream of the page,
// concatenated. A page without content yields nothing.
func pageContent(pctx *pdfmodel.Context, pageDict types.Dict) ([]byte, error) {
	content, err := pctx.PageContent(pageDict)
	if errors.Is(err, pdfmodel.ErrNoContent) {
		return nil, nil
	}
	return content, err
}

func setContents(pageDict types.Dict, ref types.IndirectRef) {
	if _, found := pageDict.Find("Contents"); found {
		pageDict.Update("Contents", ref)
	} else {
		pageDict.Insert("Contents", ref)
	}
}

func newContentStream(pctx *pdfmodel.Context, content []byte) (*types.IndirectRef, error) {
	sd, err := pctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return pctx.IndRefForNewObject(*sd)
}

// overlayContent renders the fills in their own save/restore pair.
func overlayContent(fills []Fill) []byte {
	var b bytes.Buffer
	b.WriteString("q\n")
	for _, f := range fills {
		r := f.Region
		b.WriteString(f.Color.Operator())
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s %s %s %s re\nf\n", pdfNum(r.X), pdfNum(r.Y), pdfNum(r.Width), pdfNum(r.Height))
	}
	b.WriteString("Q\n")
	return b.Bytes()
}

func pdfNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeAtomic writes through a temporary file in the destination directory
// and renames it into place.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := write(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
