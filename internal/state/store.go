// Package state provides document persistence for the embassy.
// Records are stored as JSON documents grouped into named collections,
// backed either by SQLite or by an in-process map.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"
)

// Collections used by the embassy components.
const (
	CollectionUseCases        = "use_cases"
	CollectionProjects        = "projects"
	CollectionResourceMatches = "resource_matches"
	CollectionChatSessions    = "chat_sessions"
	CollectionWorkflowLogs    = "workflow_logs"
	CollectionArchives        = "archives"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// ValidationError reports a record that cannot be stored.
type ValidationError struct {
	Collection string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: %s", e.Collection, e.Reason)
}

// Record is anything that carries its own identifier.
type Record interface {
	RecordID() string
}

// Document is a stored record in its raw form.
type Document struct {
	Collection string
	ID         string
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentWriter handles record mutation.
type DocumentWriter interface {
	// Create stores a new record and returns its id.
	Create(ctx context.Context, collection string, rec Record) (string, error)
	// Update replaces an existing record. It reports false if the id is unknown.
	Update(ctx context.Context, collection, id string, rec Record) (bool, error)
	// Delete removes a record. It reports false if the id is unknown.
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// DocumentReader handles record lookup.
type DocumentReader interface {
	// Load returns the raw document, or ErrNotFound.
	Load(ctx context.Context, collection, id string) (*Document, error)
	// Scan calls fn for each document in insertion order until fn returns an error.
	Scan(ctx context.Context, collection string, fn func(Document) error) error
}

// Store is the persistence collaborator consumed by the embassy components.
type Store interface {
	io.Closer
	DocumentReader
	DocumentWriter
}

// Get loads and decodes a record. It returns nil, nil when the record is absent.
func Get[T any](ctx context.Context, s DocumentReader, collection, id string) (*T, error) {
	doc, err := s.Load(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(doc.Data, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

// Query decodes every record in a collection and keeps those matching pred.
// A nil pred matches everything. Results follow insertion order.
func Query[T any](ctx context.Context, s DocumentReader, collection string, pred func(*T) bool) ([]*T, error) {
	var out []*T
	err := s.Scan(ctx, collection, func(doc Document) error {
		var v T
		if err := json.Unmarshal(doc.Data, &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		if pred == nil || pred(&v) {
			out = append(out, &v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isNil reports whether rec is nil, including a nil pointer held in the interface.
func isNil(rec Record) bool {
	if rec == nil {
		return true
	}
	v := reflect.ValueOf(rec)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// encode validates rec and marshals it for storage.
func encode(collection string, rec Record) (string, []byte, error) {
	if collection == "" {
		return "", nil, &ValidationError{Collection: "(unnamed)", Reason: "collection name is empty"}
	}
	if isNil(rec) {
		return "", nil, &ValidationError{Collection: collection, Reason: "record is nil"}
	}
	id := rec.RecordID()
	if id == "" {
		return "", nil, &ValidationError{Collection: collection, Reason: "record has no id"}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return id, data, nil
}
