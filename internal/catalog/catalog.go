// Package catalog provides the searchable resource catalog consumed by the navigator.
package catalog

import (
	"strings"
	"sync"

	"github.com/ShayCichocki/embassy/pkg/models"
)

// Filter narrows a catalog search. Zero-valued fields impose no constraint;
// supplied fields are combined with AND.
type Filter struct {
	// Query matches a case-insensitive substring of the title, description or any tag.
	Query string
	// Type matches the resource type case-insensitively.
	Type string
	// Industry must be one of the resource's industries.
	Industry string
	// Tags matches resources carrying at least one of the tags.
	Tags []string
}

// Catalog is an in-memory, read-mostly list of resources.
// Search results preserve insertion order.
type Catalog struct {
	mu        sync.RWMutex
	resources []models.CatalogResource
	source    string
}

// New creates a catalog over resources. The slice is copied.
func New(resources []models.CatalogResource) *Catalog {
	c := &Catalog{source: "built-in"}
	c.resources = cloneResources(resources)
	return c
}

// Search returns the resources matching f, in catalog order.
func (c *Catalog) Search(f Filter) []models.CatalogResource {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []models.CatalogResource
	for _, r := range c.resources {
		if f.Type != "" && !strings.EqualFold(string(r.Type), f.Type) {
			continue
		}
		if f.Industry != "" && !r.HasIndustry(f.Industry) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(r, f.Tags) {
			continue
		}
		if query != "" && !matchesQuery(r, query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GetByID returns the resource with the given id.
func (c *Catalog) GetByID(id string) (models.CatalogResource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.resources {
		if r.ID == id {
			return r, true
		}
	}
	return models.CatalogResource{}, false
}

// All returns a copy of every resource.
func (c *Catalog) All() []models.CatalogResource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneResources(c.resources)
}

// Len returns the number of resources.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resources)
}

// Source describes where the resources came from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Replace swaps the catalog contents atomically.
func (c *Catalog) Replace(resources []models.CatalogResource, source string) {
	cp := cloneResources(resources)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = cp
	c.source = source
}

func matchesQuery(r models.CatalogResource, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func hasAnyTag(r models.CatalogResource, tags []string) bool {
	for _, want := range tags {
		for _, have := range r.Tags {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

func cloneResources(in []models.CatalogResource) []models.CatalogResource {
	out := make([]models.CatalogResource, len(in))
	for i, r := range in {
		r.Tags = append([]string(nil), r.Tags...)
		r.Industry = append([]string(nil), r.Industry...)
		out[i] = r
	}
	return out
}
