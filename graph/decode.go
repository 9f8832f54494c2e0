package graph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devtycoon/forge/errors"
)

// Format is a graph document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension; anything that is
// not .yaml/.yml is treated as JSON
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// FormatForContentType picks the format from an HTTP content type
func FormatForContentType(ct string) Format {
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "yaml") {
		return FormatYAML
	}
	return FormatJSON
}

// Load reads a graph document from disk
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open graph %s", path)
	}
	defer f.Close()

	g, err := Decode(f, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load graph %s", path)
	}
	return g, nil
}

// Decode parses a graph document. Unknown JSON fields are rejected so typos
// in hand-written graphs surface early.
func Decode(r io.Reader, format Format) (*Graph, error) {
	var g Graph
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil {
			if err == io.EOF {
				return &g, nil
			}
			return nil, errors.Wrap(err, "invalid YAML graph")
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&g); err != nil {
			return nil, errors.Wrap(err, "invalid JSON graph")
		}
	}
	return &g, nil
}

// DecodeBytes parses a graph document held in memory
func DecodeBytes(data []byte, format Format) (*Graph, error) {
	return Decode(bytes.NewReader(data), format)
}

// Encode writes g in the given format
func Encode(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return errors.Wrap(err, "failed to encode YAML graph")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(g); err != nil {
			return errors.Wrap(err, "failed to encode JSON graph")
		}
		return nil
	}
}
