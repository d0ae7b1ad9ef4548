package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"testing"

	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/vocabulary/omrs"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryKV serves Keys and Get from a map; other KeyValue methods are not
// used by the scan.
type memoryKV struct {
	jetstream.KeyValue
	values  map[string][]byte
	getErrs map[string]error
	keysErr error
	delErr  error
}

func (m *memoryKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.values, key)
	return nil
}

func (m *memoryKV) Keys(_ context.Context, _ ...jetstream.WatchOpt) ([]string, error) {
	if m.keysErr != nil {
		return nil, m.keysErr
	}
	keys := make([]string, 0, len(m.values)+len(m.getErrs))
	for k := range m.values {
		keys = append(keys, k)
	}
	for k := range m.getErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	if err, ok := m.getErrs[key]; ok {
		return nil, err
	}
	v, ok := m.values[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return kvEntry{value: v}, nil
}

type kvEntry struct {
	jetstream.KeyValueEntry
	value []byte
}

func (e kvEntry) Value() []byte { return e.value }

func relationshipJSON(t *testing.T, guid, end1, end2 string) []byte {
	t.Helper()
	r := instance.NewRelationship(guid, omrs.RelationshipForeignKey,
		instance.Proxy{GUID: end1}, instance.Proxy{GUID: end2}, nil)
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return data
}

func scanStore(rels *memoryKV) (*KVStore, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return newKVStore(&memoryKV{}, rels, WithKVLogger(logger)), &logs
}

func TestKVStore_FetchRelationshipsScan(t *testing.T) {
	ctx := context.Background()

	t.Run("key deleted during scan is skipped", func(t *testing.T) {
		store, logs := scanStore(&memoryKV{
			values:  map[string][]byte{"fk-1": relationshipJSON(t, "fk-1", "col-0", "col-1")},
			getErrs: map[string]error{"fk-gone": jetstream.ErrKeyNotFound},
		})

		rels, err := store.FetchRelationships(ctx, "col-1", omrs.RelationshipForeignKey)
		require.NoError(t, err)
		require.Len(t, rels, 1)
		assert.Equal(t, "fk-1", rels[0].GUID)
		assert.Contains(t, logs.String(), "fk-gone")
	})

	t.Run("corrupt entry is an error", func(t *testing.T) {
		store, logs := scanStore(&memoryKV{
			values: map[string][]byte{
				"fk-1":   relationshipJSON(t, "fk-1", "col-0", "col-1"),
				"fk-bad": []byte("{not json"),
			},
		})

		rels, err := store.FetchRelationships(ctx, "col-1", omrs.RelationshipForeignKey)
		assert.Nil(t, rels)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fk-bad")
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "key=fk-bad")
	})

	t.Run("read failure is an error", func(t *testing.T) {
		cause := errors.New("stream unavailable")
		store, logs := scanStore(&memoryKV{
			values:  map[string][]byte{"fk-1": relationshipJSON(t, "fk-1", "col-0", "col-1")},
			getErrs: map[string]error{"fk-2": cause},
		})

		_, err := store.FetchRelationships(ctx, "col-1", "")
		require.ErrorIs(t, err, cause)
		assert.Contains(t, logs.String(), "key=fk-2")
	})

	t.Run("empty bucket", func(t *testing.T) {
		store, _ := scanStore(&memoryKV{keysErr: jetstream.ErrNoKeysFound})
		rels, err := store.FetchRelationships(ctx, "col-1", "")
		require.NoError(t, err)
		assert.Empty(t, rels)
	})

	t.Run("listing failure is an error", func(t *testing.T) {
		cause := errors.New("timeout")
		store, _ := scanStore(&memoryKV{keysErr: cause})
		_, err := store.FetchRelationships(ctx, "col-1", "")
		assert.ErrorIs(t, err, cause)
	})
}

func TestNewKVStoreLoggerDefault(t *testing.T) {
	store := newKVStore(&memoryKV{}, &memoryKV{}, WithKVLogger(nil))
	assert.NotNil(t, store.logger)
}

func TestKVStore_DeleteErrors(t *testing.T) {
	ctx := context.Background()
	key := Key{Category: instance.CategoryRelationship, GUID: "fk-1"}

	store := newKVStore(&memoryKV{}, &memoryKV{delErr: jetstream.ErrKeyNotFound})
	assert.ErrorIs(t, store.Delete(ctx, key), ErrNotFound)

	cause := errors.New("stream unavailable")
	store = newKVStore(&memoryKV{}, &memoryKV{delErr: cause})
	err := store.Delete(ctx, key)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "relationship:fk-1")

	rels := &memoryKV{values: map[string][]byte{"fk-1": relationshipJSON(t, "fk-1", "a", "b")}}
	store = newKVStore(&memoryKV{}, rels)
	require.NoError(t, store.Delete(ctx, key))
	assert.Empty(t, rels.values)
}
