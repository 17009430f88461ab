package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. Nothing survives Close.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]*Document
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (m *MemoryStore) collection(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]*Document)}
		m.collections[name] = c
	}
	return c
}

// Create stores a new record.
func (m *MemoryStore) Create(_ context.Context, collection string, rec Record) (string, error) {
	id, data, err := encode(collection, rec)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c.docs[id]; ok {
		return "", fmt.Errorf("create %s/%s: %w", collection, id, ErrAlreadyExists)
	}
	now := time.Now().UTC()
	c.docs[id] = &Document{Collection: collection, ID: id, Data: data, CreatedAt: now, UpdatedAt: now}
	c.order = append(c.order, id)
	return id, nil
}

// Update replaces the stored record.
func (m *MemoryStore) Update(_ context.Context, collection, id string, rec Record) (bool, error) {
	recID, data, err := encode(collection, rec)
	if err != nil {
		return false, err
	}
	if recID != id {
		return false, &ValidationError{Collection: collection, Reason: fmt.Sprintf("id %q does not match record id %q", id, recID)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection).docs[id]
	if !ok {
		return false, nil
	}
	doc.Data = data
	doc.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Delete removes a record.
func (m *MemoryStore) Delete(_ context.Context, collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Load retrieves a raw document.
func (m *MemoryStore) Load(_ context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

// Scan iterates a collection in insertion order.
func (m *MemoryStore) Scan(ctx context.Context, collection string, fn func(Document) error) error {
	m.mu.RLock()
	var docs []Document
	if c, ok := m.collections[collection]; ok {
		docs = make([]Document, 0, len(c.order))
		for _, id := range c.order {
			docs = append(docs, *c.docs[id])
		}
	}
	m.mu.RUnlock()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// Close drops all documents.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = make(map[string]*memCollection)
	return nil
}
