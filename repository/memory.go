package repository

import (
	"context"
	"sync"

	"github.com/c360studio/semconv/instance"
)

// Memory is an in-memory Repository. It is safe for concurrent use.
type Memory struct {
	mu            sync.RWMutex
	entities      map[string]*instance.Record
	relationships map[string]*instance.Record
}

// NewMemory creates a Memory holding the given records.
func NewMemory(records ...*instance.Record) (*Memory, error) {
	m := &Memory{
		entities:      make(map[string]*instance.Record),
		relationships: make(map[string]*instance.Record),
	}
	for _, r := range records {
		if err := m.Put(context.Background(), r); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Put stores or replaces a record.
func (m *Memory) Put(_ context.Context, r *instance.Record) error {
	if err := validate(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.IsRelationship() {
		m.relationships[r.GUID] = r
	} else {
		m.entities[r.GUID] = r
	}
	return nil
}

// Replace swaps the whole content of the store. Nothing changes when one
// of the records is invalid.
func (m *Memory) Replace(records []*instance.Record) error {
	entities := make(map[string]*instance.Record)
	relationships := make(map[string]*instance.Record)
	for _, r := range records {
		if err := validate(r); err != nil {
			return err
		}
		if r.IsRelationship() {
			relationships[r.GUID] = r
		} else {
			entities[r.GUID] = r
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = entities
	m.relationships = relationships
	return nil
}

// Delete removes a record.
func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := m.entities
	if key.Category == instance.CategoryRelationship {
		target = m.relationships
	}
	if _, ok := target[key.GUID]; !ok {
		return ErrNotFound
	}
	delete(target, key.GUID)
	return nil
}

// Len returns the number of stored entities and relationships.
func (m *Memory) Len() (entities, relationships int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities), len(m.relationships)
}

// FetchEntity implements Repository.
func (m *Memory) FetchEntity(_ context.Context, guid string) (*instance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entities[guid]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// FetchRelationships implements Repository. Results are ordered by GUID.
func (m *Memory) FetchRelationships(_ context.Context, entityGUID, relationshipType string) ([]*instance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*instance.Record
	for _, r := range m.relationships {
		if matches(r, entityGUID, relationshipType) {
			out = append(out, r)
		}
	}
	sortByGUID(out)
	return out, nil
}
