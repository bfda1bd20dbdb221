package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sweep-runner/core/models"

	"gopkg.in/yaml.v3"
)

// Metafile represents the YAML model-collection metadata file
type Metafile struct {
	Collections []MetafileCollection `yaml:"Collections"`
	Models      []MetafileModel      `yaml:"Models"`
}

// MetafileCollection represents one collection entry
type MetafileCollection struct {
	Name         string   `yaml:"Name"`
	Architecture []string `yaml:"Architecture,omitempty"`
	Paper        struct {
		Title string `yaml:"Title,omitempty"`
		URL   string `yaml:"URL,omitempty"`
	} `yaml:"Paper,omitempty"`
}

// MetafileModel represents one model entry
type MetafileModel struct {
	Name         string `yaml:"Name"`
	InCollection string `yaml:"In Collection"`
	Config       string `yaml:"Config,omitempty"`
	Weights      string `yaml:"Weights,omitempty"`
	Metadata     struct {
		FLOPs      int64 `yaml:"FLOPs,omitempty"`
		Parameters int64 `yaml:"Parameters,omitempty"`
	} `yaml:"Metadata,omitempty"`
}

// ParseMetafile parses a YAML metafile into model collections
func ParseMetafile(metaYAML string) ([]models.ModelCollection, error) {
	var meta Metafile
	if err := yaml.Unmarshal([]byte(metaYAML), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	byName := make(map[string]*models.ModelCollection)
	var order []string

	for _, c := range meta.Collections {
		if c.Name == "" {
			return nil, fmt.Errorf("collection name is required")
		}
		if _, ok := byName[c.Name]; ok {
			return nil, fmt.Errorf("duplicate collection %q", c.Name)
		}
		byName[c.Name] = &models.ModelCollection{
			Name:         c.Name,
			Architecture: c.Architecture,
			Paper: models.PaperReference{
				Title: c.Paper.Title,
				URL:   c.Paper.URL,
			},
		}
		order = append(order, c.Name)
	}

	for _, m := range meta.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("model name is required")
		}
		collection, ok := byName[m.InCollection]
		if !ok {
			return nil, fmt.Errorf("model %q references unknown collection %q", m.Name, m.InCollection)
		}
		if m.Metadata.FLOPs < 0 || m.Metadata.Parameters < 0 {
			return nil, fmt.Errorf("model %q: FLOPs and parameter counts must be non-negative", m.Name)
		}
		collection.Models = append(collection.Models, models.ModelRecord{
			Name:       m.Name,
			FLOPs:      m.Metadata.FLOPs,
			Parameters: m.Metadata.Parameters,
			Config:     m.Config,
			Weights:    m.Weights,
		})
	}

	collections := make([]models.ModelCollection, 0, len(order))
	for _, name := range order {
		collections = append(collections, *byName[name])
	}

	return collections, nil
}

// LoadMetafiles parses every metafile under dir
func LoadMetafiles(dir string) ([]models.ModelCollection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read metafile dir %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yml" || ext == ".yaml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var collections []models.ModelCollection
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read metafile %s: %w", name, err)
		}
		parsed, err := ParseMetafile(string(data))
		if err != nil {
			return nil, fmt.Errorf("metafile %s: %w", name, err)
		}
		collections = append(collections, parsed...)
	}

	return collections, nil
}
