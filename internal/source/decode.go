package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/evdash/internal/core"
)

// DecodeJSON reads a JSON array of objects. Numbers are kept as
// json.Number so integers are not widened to float64.
func DecodeJSON(r io.Reader) ([]core.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return normalizeAll(raw), nil
}

// DecodeYAML reads a YAML sequence of mappings.
func DecodeYAML(r io.Reader) ([]core.Record, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return []core.Record{}, nil
		}
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return normalizeAll(raw), nil
}

func normalizeAll(raw []map[string]any) []core.Record {
	records := make([]core.Record, 0, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		records = append(records, Normalize(m))
	}
	return records
}
