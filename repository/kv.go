package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/semconv/instance"
	"github.com/nats-io/nats.go/jetstream"
)

// Default bucket names.
const (
	BucketEntities      = "SEMCONV_ENTITIES"
	BucketRelationships = "SEMCONV_RELATIONSHIPS"
)

// KVStore is a Repository backed by two NATS KV buckets, one for entities
// and one for relationships, keyed by GUID.
type KVStore struct {
	entities      jetstream.KeyValue
	relationships jetstream.KeyValue
	logger        *slog.Logger
}

// KVOption configures a KVStore.
type KVOption func(*KVStore)

// WithKVLogger sets the logger.
func WithKVLogger(logger *slog.Logger) KVOption {
	return func(s *KVStore) {
		s.logger = logger
	}
}

// NewKVStore creates a KVStore with the given JetStream context. It creates
// the buckets if they don't exist. Empty bucket names use the defaults.
func NewKVStore(ctx context.Context, js jetstream.JetStream, entityBucket, relationshipBucket string, opts ...KVOption) (*KVStore, error) {
	if entityBucket == "" {
		entityBucket = BucketEntities
	}
	if relationshipBucket == "" {
		relationshipBucket = BucketRelationships
	}

	entities, err := getOrCreateBucket(ctx, js, entityBucket)
	if err != nil {
		return nil, fmt.Errorf("create entities bucket: %w", err)
	}

	relationships, err := getOrCreateBucket(ctx, js, relationshipBucket)
	if err != nil {
		return nil, fmt.Errorf("create relationships bucket: %w", err)
	}

	return newKVStore(entities, relationships, opts...), nil
}

func newKVStore(entities, relationships jetstream.KeyValue, opts ...KVOption) *KVStore {
	s := &KVStore{
		entities:      entities,
		relationships: relationships,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semconv %s records", strings.ToLower(name)),
		History:     5,
	})
}

// Put stores or replaces a record.
func (s *KVStore) Put(ctx context.Context, r *instance.Record) error {
	if err := validate(r); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	bucket := s.entities
	if r.IsRelationship() {
		bucket = s.relationships
	}
	if _, err := bucket.Put(ctx, r.GUID, data); err != nil {
		return fmt.Errorf("store %s: %w", KeyOf(r), err)
	}
	return nil
}

// Delete removes a record. A not-found response from the bucket is
// returned as ErrNotFound.
func (s *KVStore) Delete(ctx context.Context, key Key) error {
	bucket := s.entities
	if key.Category == instance.CategoryRelationship {
		bucket = s.relationships
	}
	if err := bucket.Delete(ctx, key.GUID); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// FetchEntity implements Repository.
func (s *KVStore) FetchEntity(ctx context.Context, guid string) (*instance.Record, error) {
	entry, err := s.entities.Get(ctx, guid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get entity: %w", err)
	}

	var r instance.Record
	if err := json.Unmarshal(entry.Value(), &r); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &r, nil
}

// FetchRelationships implements Repository. The relationship bucket is
// scanned. A key deleted while the scan runs is skipped; any other read or
// decode failure is returned.
func (s *KVStore) FetchRelationships(ctx context.Context, entityGUID, relationshipType string) ([]*instance.Record, error) {
	keys, err := s.relationships.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list relationship keys: %w", err)
	}

	var out []*instance.Record
	for _, key := range keys {
		entry, err := s.relationships.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				s.logger.Debug("Relationship deleted during scan", slog.String("key", key))
				continue
			}
			s.logger.Warn("Failed to read relationship",
				slog.String("key", key),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("get relationship %s: %w", key, err)
		}
		var r instance.Record
		if err := json.Unmarshal(entry.Value(), &r); err != nil {
			s.logger.Warn("Failed to decode relationship",
				slog.String("key", key),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("unmarshal relationship %s: %w", key, err)
		}
		if matches(&r, entityGUID, relationshipType) {
			out = append(out, &r)
		}
	}
	sortByGUID(out)
	return out, nil
}

// isNotFound checks if an error indicates a key was not found.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, jetstream.ErrKeyNotFound) || strings.Contains(err.Error(), "key not found")
}
