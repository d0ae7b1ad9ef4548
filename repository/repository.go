// Package repository provides the record sources projections read from:
// an in-memory store, a NATS KV store and YAML fixture files.
package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/semconv/instance"
)

// Repository is the query interface the projection layer consumes. Returned
// records are snapshots and must not be modified.
type Repository interface {
	// FetchEntity returns the entity with the given GUID, or ErrNotFound.
	FetchEntity(ctx context.Context, guid string) (*instance.Record, error)

	// FetchRelationships returns the relationships of relationshipType that
	// have entityGUID at either end. An empty relationshipType matches every
	// type. No match is not an error.
	FetchRelationships(ctx context.Context, entityGUID, relationshipType string) ([]*instance.Record, error)
}

// Writer stores records.
type Writer interface {
	Put(ctx context.Context, r *instance.Record) error
}

// Key identifies a stored record by category and GUID.
type Key struct {
	Category instance.Category
	GUID     string
}

// String returns the string representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Category, k.GUID)
}

// KeyOf returns the key of a record.
func KeyOf(r *instance.Record) Key {
	return Key{Category: r.Type.Category, GUID: r.GUID}
}

// ParseKey parses a key string into its components.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Key{}, fmt.Errorf("invalid record key format: %s", s)
	}
	category := instance.Category(parts[0])
	switch category {
	case instance.CategoryEntity, instance.CategoryRelationship:
		return Key{Category: category, GUID: parts[1]}, nil
	default:
		return Key{}, fmt.Errorf("unknown record category: %s", parts[0])
	}
}

func validate(r *instance.Record) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	if r.GUID == "" {
		return fmt.Errorf("%w: missing guid", ErrInvalidRecord)
	}
	if r.Type.Name == "" {
		return fmt.Errorf("%w: %s has no type name", ErrInvalidRecord, r.GUID)
	}
	switch r.Type.Category {
	case instance.CategoryEntity:
	case instance.CategoryRelationship:
		if r.End1 == nil || r.End2 == nil {
			return fmt.Errorf("%w: relationship %s needs two ends", ErrInvalidRecord, r.GUID)
		}
	default:
		return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidRecord, r.GUID, r.Type.Category)
	}
	return nil
}

func matches(r *instance.Record, entityGUID, relationshipType string) bool {
	if relationshipType != "" && r.Type.Name != relationshipType {
		return false
	}
	return r.Links(entityGUID)
}

func sortByGUID(records []*instance.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].GUID < records[j].GUID
	})
}
