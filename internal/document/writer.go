package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Format selects the output encoding
type Format string

const (
	FormatXML     Format = "xml"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatPBF     Format = "pbf"
)

// ErrFormatDisabled is returned by writers that are registered but not available in this build
var ErrFormatDisabled = errors.New("output format disabled")

// ErrUnknownFormat is returned for unregistered formats
var ErrUnknownFormat = errors.New("unknown output format")

// Writer serialises a document
type Writer interface {
	Format() Format
	Write(w io.Writer, doc *Document) error
}

var writers = map[Format]Writer{
	FormatXML:     xmlWriter{},
	FormatJSON:    jsonWriter{},
	FormatParquet: parquetWriter{},
	FormatPBF:     pbfWriter{},
}

// ParseFormat parses a format name (case-insensitive)
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := writers[f]; !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// Formats lists registered format names
func Formats() []string {
	names := make([]string, 0, len(writers))
	for f := range writers {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// WriterFor returns the writer registered for f
func WriterFor(f Format) (Writer, error) {
	w, ok := writers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return w, nil
}

// WriteFile writes doc to path using w. The document is written to a temporary
// file in the same directory and renamed into place, so path is either complete or untouched.
func WriteFile(path string, doc *Document, w Writer) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 1<<20)
	if err := w.Write(buf, doc); err != nil {
		return fmt.Errorf("failed to write %s document: %w", w.Format(), err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	committed = true
	return nil
}

// pbfWriter holds the slot for the binary format. The osm module ships a
// decoder only, so encoding is not available.
type pbfWriter struct{}

func (pbfWriter) Format() Format { return FormatPBF }

func (pbfWriter) Write(io.Writer, *Document) error {
	return fmt.Errorf("%w: %s (no OSM PBF encoder available)", ErrFormatDisabled, FormatPBF)
}
