package static

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/karina-peters/metro-map/internal/metro"
)

// FileSource reads stations.{json,yaml,yml} and regions.{json,yaml,yml}
// from a directory
type FileSource struct {
	dir string
}

// NewFileSource creates a source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

type stationFile struct {
	Code string `json:"Code" yaml:"Code"`
	Name string `json:"Name" yaml:"Name"`
}

type regionFile struct {
	ID    string           `json:"Id" yaml:"Id"`
	Lines []regionFileLine `json:"Lines" yaml:"Lines"`
}

type regionFileLine struct {
	Code     string     `json:"Code" yaml:"Code"`
	Track    trackValue `json:"Track" yaml:"Track"`
	Origin   int        `json:"Origin" yaml:"Origin"`
	Terminus int        `json:"Terminus" yaml:"Terminus"`
}

// trackValue accepts a direction written as a number (1) or a string ("1")
type trackValue string

func (t *trackValue) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = trackValue(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("track must be a number or string: %w", err)
	}
	*t = trackValue(s)
	return nil
}

func (t *trackValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("track must be a scalar, line %d", node.Line)
	}
	*t = trackValue(node.Value)
	return nil
}

// Stations reads the station import
func (s *FileSource) Stations(ctx context.Context) ([]metro.RawStation, error) {
	var records []stationFile
	if err := s.decode("stations", &records); err != nil {
		return nil, err
	}

	out := make([]metro.RawStation, 0, len(records))
	for _, r := range records {
		out = append(out, metro.RawStation{Code: r.Code, Name: r.Name})
	}
	return out, nil
}

// Regions reads the region import
func (s *FileSource) Regions(ctx context.Context) ([]metro.RawRegion, error) {
	var records []regionFile
	if err := s.decode("regions", &records); err != nil {
		return nil, err
	}

	out := make([]metro.RawRegion, 0, len(records))
	for _, r := range records {
		region := metro.RawRegion{Name: r.ID}
		for _, l := range r.Lines {
			region.Lines = append(region.Lines, metro.RawRegionLine{
				LineCode:  l.Code,
				Direction: string(l.Track),
				Origin:    l.Origin,
				Terminus:  l.Terminus,
			})
		}
		out = append(out, region)
	}
	return out, nil
}

// Close is a no-op
func (s *FileSource) Close() error {
	return nil
}

// decode finds <name>.json, <name>.yaml or <name>.yml and decodes it into out
func (s *FileSource) decode(name string, out interface{}) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return fmt.Errorf("%s: %w", path, metro.ErrMissingData)
		}

		if ext == ".json" {
			err = json.Unmarshal(data, out)
		} else {
			err = yaml.Unmarshal(data, out)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("no %s file in %s: %w", name, s.dir, metro.ErrMissingData)
}
