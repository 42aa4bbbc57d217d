package redact

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultSuffix is inserted between the input name and the timestamp.
	DefaultSuffix = "_redacted_"
	// DefaultTimestampLayout renders as YYYYMMDD_HHMMSS.
	DefaultTimestampLayout = "20060102_150405"
)

// OutputPath derives the output file from the input: the suffix and the
// formatted time are inserted before the extension, in the same directory.
//
//	OutputPath("in/manifest.pdf", t) // in/manifest_redacted_20240102_030405.pdf
func OutputPath(input string, at time.Time) string {
	return outputPath(input, DefaultSuffix, DefaultTimestampLayout, at)
}

func outputPath(input, suffix, layout string, at time.Time) string {
	dir, file := filepath.Split(input)
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return dir + base + suffix + at.Format(layout) + ext
}
