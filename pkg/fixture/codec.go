package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jd "github.com/josephburnett/jd/lib"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization used for a fixture.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported fixture format")
	ErrRoundTripMismatch = errors.New("fixture serialization is not idempotent")
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a fixture file. The format follows the file extension.
func Load(path string) (Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Input{}, err
	}
	clean := filepath.Clean(path)
	// #nosec G304 -- fixture path is chosen by the operator
	f, err := os.Open(clean)
	if err != nil {
		return Input{}, err
	}
	defer func() { _ = f.Close() }()

	in, err := Decode(f, format)
	if err != nil {
		return Input{}, fmt.Errorf("cannot decode %s: %w", path, err)
	}
	return in, nil
}

// Decode reads a fixture from r.
func Decode(r io.Reader, format Format) (Input, error) {
	var in Input
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return Input{}, fmt.Errorf("failed to decode JSON fixture: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil {
			return Input{}, fmt.Errorf("failed to decode YAML fixture: %w", err)
		}
	default:
		return Input{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return in, nil
}

// Marshal serializes the fixture. JSON output is indented with two spaces.
func Marshal(in Input, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(in, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// RoundTrip serializes in, parses it back and serializes again. It returns
// the structural diff between the two serializations, which is empty for an
// idempotent fixture.
func RoundTrip(in Input, format Format) (string, error) {
	first, err := Marshal(in, format)
	if err != nil {
		return "", err
	}
	back, err := Decode(bytes.NewReader(first), format)
	if err != nil {
		return "", err
	}
	second, err := Marshal(back, format)
	if err != nil {
		return "", err
	}

	a, err := readNode(first, format)
	if err != nil {
		return "", err
	}
	b, err := readNode(second, format)
	if err != nil {
		return "", err
	}
	if diff := a.Diff(b).Render(); diff != "" {
		return diff, fmt.Errorf("%w:\n%s", ErrRoundTripMismatch, diff)
	}
	return "", nil
}

func readNode(data []byte, format Format) (jd.JsonNode, error) {
	if format == FormatYAML {
		return jd.ReadYamlString(string(data))
	}
	return jd.ReadJsonString(string(data))
}
