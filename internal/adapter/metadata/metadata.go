// Package metadata loads deployment metadata that fills AMOF global attributes.
//
// Two formats are accepted. The CSV format has one "name,value" pair per line,
// where value may itself contain commas:
//
//	creator_name,Jane Smith
//	project,Weather station, Iceland campaign
//	latitude,52.3141
//
// The YAML format is a flat mapping of the same names, kept in file order.
// The latitude and longitude entries set the coordinate variables instead of
// global attributes.
package metadata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ncasuk/ncas-aws-10-software/internal/amof"
)

// Metadata is the content of a metadata file.
type Metadata struct {
	Attributes []amof.GlobalAttr
	Latitude   *float32
	Longitude  *float32
}

// Load reads a metadata file, choosing the format by extension.
func Load(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}

	var pairs [][2]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		pairs, err = parseYAML(data)
	default:
		pairs, err = parseCSV(data)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", filepath.Base(path), err)
	}
	return fromPairs(pairs)
}

func parseCSV(data []byte) ([][2]string, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("attribute %q has no value", row[0])
		}
		pairs = append(pairs, [2]string{strings.TrimSpace(row[0]), strings.Join(row[1:], ",")})
	}
	return pairs, nil
}

func parseYAML(data []byte) ([][2]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}

	pairs := make([][2]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("attribute %q must be a scalar", key.Value)
		}
		pairs = append(pairs, [2]string{key.Value, val.Value})
	}
	return pairs, nil
}

func fromPairs(pairs [][2]string) (Metadata, error) {
	var md Metadata
	for _, p := range pairs {
		name, value := p[0], p[1]
		switch name {
		case "latitude", "longitude":
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
			if err != nil {
				return Metadata{}, fmt.Errorf("%s: %w", name, err)
			}
			v := float32(f)
			if name == "latitude" {
				md.Latitude = &v
			} else {
				md.Longitude = &v
			}
		default:
			md.Attributes = append(md.Attributes, amof.GlobalAttr{Name: name, Value: value})
		}
	}
	return md, nil
}
