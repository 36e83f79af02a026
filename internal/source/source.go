// Package source loads the vehicle record collection from files or
// PostgreSQL. Records are loaded once at startup and handed to the
// view engine read-only.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/evdash/internal/core"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatOf picks the decoder for path by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads every path concurrently and concatenates the records in
// argument order. The first failure cancels the remaining reads.
func Load(ctx context.Context, paths ...string) ([]core.Record, error) {
	results := make([][]core.Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			records, err := LoadFile(gctx, path)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]core.Record, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// LoadFile reads a single record file.
func LoadFile(ctx context.Context, path string) ([]core.Record, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}

// Decode reads records of the given format from r.
func Decode(ctx context.Context, r io.Reader, format Format) ([]core.Record, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	case FormatCSV:
		return DecodeCSV(ctx, r)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}
