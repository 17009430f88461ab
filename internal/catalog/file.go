package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// catalogFile is the on-disk YAML layout:
//
//	resources:
//	  - resource_id: demo-001
//	    title: Azure OpenAI Chat Demo
//	    type: Demo
//	    ...
type catalogFile struct {
	Resources []models.CatalogResource `yaml:"resources"`
}

// LoadFile reads and validates a YAML catalog file.
func LoadFile(path string) ([]models.CatalogResource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// LoadDir reads every *.yaml and *.yml file in dir in name order.
// Resource ids must be unique across files.
func LoadDir(dir string) ([]models.CatalogResource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isCatalogFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []models.CatalogResource
	seen := make(map[string]string)
	for _, name := range names {
		resources, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for _, r := range resources {
			if prev, dup := seen[r.ID]; dup {
				return nil, fmt.Errorf("%s: resource_id %q already defined in %s", name, r.ID, prev)
			}
			seen[r.ID] = name
		}
		out = append(out, resources...)
	}
	return out, nil
}

// Load reads path as a directory of catalog files or as a single file.
func Load(path string) ([]models.CatalogResource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func isCatalogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Parse decodes and validates YAML catalog content.
func Parse(data []byte) ([]models.CatalogResource, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Resources))
	for i := range f.Resources {
		r := &f.Resources[i]
		if r.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing resource_id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate resource_id %q", i, r.ID)
		}
		seen[r.ID] = true

		t, ok := models.ParseResourceType(string(r.Type))
		if !ok {
			return nil, fmt.Errorf("catalog entry %q: unknown type %q", r.ID, r.Type)
		}
		r.Type = t
	}
	return f.Resources, nil
}

// Open returns the built-in catalog when path is empty, or one loaded from
// path, which may be a YAML file or a directory of them.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Mock(), nil
	}
	resources, err := Load(path)
	if err != nil {
		return nil, err
	}
	c := New(resources)
	c.source = path
	return c, nil
}
