package data

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mchmarny/propensity/pkg/score"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// ErrUnsupportedFormat is returned for files other than json, yaml and csv.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatOf returns the record format implied by the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadFile reads customer records from a json, yaml or csv file. JSON and
// YAML files may hold a single record or a list.
func ReadFile(path string) ([]*score.Customer, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	list, err := Decode(format, b)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return list, nil
}

// Decode parses customer records in the given format.
func Decode(format string, b []byte) ([]*score.Customer, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(b)
	case FormatYAML:
		return decodeYAML(b)
	case FormatCSV:
		return decodeCSV(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(b []byte) ([]*score.Customer, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return []*score.Customer{}, nil
	}

	if b[0] == '[' {
		var list []*score.Customer
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, fmt.Errorf("error unmarshalling json list: %w", err)
		}
		return list, nil
	}

	var c score.Customer
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error unmarshalling json record: %w", err)
	}
	return []*score.Customer{&c}, nil
}

func decodeYAML(b []byte) ([]*score.Customer, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, fmt.Errorf("error parsing yaml: %w", err)
	}

	// empty document
	if len(node.Content) == 0 {
		return []*score.Customer{}, nil
	}

	doc := node.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var list []*score.Customer
		if err := doc.Decode(&list); err != nil {
			return nil, fmt.Errorf("error decoding yaml list: %w", err)
		}
		return list, nil
	}

	var c score.Customer
	if err := doc.Decode(&c); err != nil {
		return nil, fmt.Errorf("error decoding yaml record: %w", err)
	}
	return []*score.Customer{&c}, nil
}

func decodeCSV(r io.Reader) ([]*score.Customer, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []*score.Customer{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	cols := make(map[score.Feature]int, len(header))
	for i, h := range header {
		f, err := score.ParseFeature(h)
		if err != nil {
			continue
		}
		cols[f] = i
	}
	for _, f := range score.Features() {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("csv header missing column: %s", f)
		}
	}

	list := make([]*score.Customer, 0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv line %d: %w", line, err)
		}

		var v score.Vector
		for _, f := range score.Features() {
			n, err := parseCSVValue(f, rec[cols[f]])
			if err != nil {
				return nil, fmt.Errorf("csv line %d, column %s: %w", line, f, err)
			}
			v[f] = n
		}
		c := score.FromValues(v)
		list = append(list, &c)
	}
	return list, nil
}

// parseCSVValue parses count columns as integers so they never go through a
// float-to-int conversion. Money and rate columns may be any float,
// non-finite values included; those are rejected later by score.Validate.
func parseCSVValue(f score.Feature, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if !f.Integral() {
		return strconv.ParseFloat(raw, 64)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}
