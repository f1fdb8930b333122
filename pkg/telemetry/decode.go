package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mchmarny/trackreward/pkg/reward"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a telemetry document.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJSONL Format = "jsonl"
)

// FormatFromPath infers the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

// DecodeJSON reads a single JSON params object.
func DecodeJSON(r io.Reader) (*Params, error) {
	var p Params
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding json: %v", reward.ErrInvalidParameter, err)
	}
	return &p, nil
}

// DecodeYAML reads a single YAML params document.
func DecodeYAML(r io.Reader) (*Params, error) {
	var p Params
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding yaml: %v", reward.ErrInvalidParameter, err)
	}
	return &p, nil
}

// Decode reads a single params document in the given format. A JSON-lines
// stream yields its first record.
func Decode(r io.Reader, f Format) (*Params, error) {
	switch f {
	case FormatYAML:
		return DecodeYAML(r)
	case FormatJSONL:
		rec, err := NewReader(r).Next()
		if err != nil {
			return nil, err
		}
		return &rec.Params, nil
	default:
		return DecodeJSON(r)
	}
}

// ReadSnapshot decodes and validates a single snapshot.
func ReadSnapshot(r io.Reader, f Format) (*reward.Snapshot, error) {
	p, err := Decode(r, f)
	if err != nil {
		return nil, err
	}
	return p.Snapshot()
}
