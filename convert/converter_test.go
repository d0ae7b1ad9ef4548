package convert

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/vocabulary/omrs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu      sync.Mutex
	reports []Report
}

func (r *recordingReporter) Report(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *recordingReporter) all() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}

func newTestConverter() (*Converter, *recordingReporter, *Metrics) {
	rep := &recordingReporter{}
	m := NewMetrics(nil, "test")
	return NewConverter(WithReporter(rep), WithMetrics(m)), rep, m
}

func columnEntity(props map[string]any) *instance.Record {
	r := instance.NewEntity("col-1", omrs.TypeRelationalColumn, instance.PropertiesFromMap(props))
	r.Type.SuperTypes = []string{omrs.TypeTabularColumn, omrs.TypeSchemaAttribute, omrs.TypeReferenceable}
	r.System.MetadataCollectionID = "mc-1"
	r.System.CreatedBy = "erin"
	r.System.Version = 4
	return r
}

func TestNewDatabaseColumnBean_Scenario(t *testing.T) {
	c, rep, _ := newTestConverter()

	entity := columnEntity(map[string]any{
		"qualifiedName": "db.col1",
		"position":      "3",
		"isNullable":    "true",
		"customX":       "42",
	})

	bean, err := c.NewDatabaseColumnBean(nil, entity, nil, nil, "getColumn")
	require.NoError(t, err)
	require.NotNil(t, bean)

	assert.Equal(t, "db.col1", bean.QualifiedName)
	assert.Equal(t, 3, bean.Position)
	assert.True(t, bean.IsNullable)
	assert.Equal(t, map[string]any{"customX": "42"}, bean.ExtendedProperties)

	assert.Equal(t, omrs.TypeRelationalColumn, bean.TypeName)
	assert.Equal(t, bean.ElementHeader.Type.TypeName, bean.TypeName)
	assert.Equal(t, "col-1", bean.ElementHeader.GUID)
	assert.Equal(t, "mc-1", bean.ElementHeader.Origin.HomeMetadataCollectionID)
	assert.Equal(t, "erin", bean.ElementHeader.Versions.CreatedBy)
	assert.Equal(t, int64(4), bean.ElementHeader.Versions.Version)
	assert.Equal(t, instance.CategoryEntity, bean.ElementHeader.Type.Category)
	assert.Contains(t, bean.ElementHeader.Type.SuperTypeNames, omrs.TypeSchemaAttribute)

	assert.Empty(t, rep.all())

	// The record itself is left untouched.
	assert.Equal(t, 4, entity.Properties.Len())
}

func TestNewDatabaseColumnBean_NoLoss(t *testing.T) {
	bags := []map[string]any{
		{},
		{"qualifiedName": "a"},
		{"customX": "1", "customY": 2},
		{
			"qualifiedName":         "db.t.c",
			"displayName":           "c",
			"description":           "a column",
			"position":              1,
			"minCardinality":        0,
			"maxCardinality":        1,
			"allowsDuplicateValues": true,
			"orderedValues":         false,
			"defaultValueOverride":  "x",
			"sortOrder":             "ASCENDING",
			"minimumLength":         2,
			"length":                40,
			"significantDigits":     3,
			"isNullable":            "false",
			"nativeClass":           "java.lang.String",
			"aliases":               []any{"c1", "c2"},
			"additionalProperties":  map[string]any{"k": "v"},
			"subtypeOnly":           "kept",
			"dataType":              "not claimed on the entity bag",
		},
	}

	claimed := make(map[string]bool)
	for _, name := range ClaimedProperties(elements.ShapeDatabaseColumn) {
		claimed[name] = true
	}

	c, _, _ := newTestConverter()
	for _, bag := range bags {
		entity := columnEntity(bag)
		original := entity.Properties.Keys()

		bean, err := c.NewDatabaseColumnBean(nil, entity, nil, nil, "noLoss")
		require.NoError(t, err)

		var union []string
		for _, key := range original {
			_, extended := bean.ExtendedProperties[key]
			assert.False(t, claimed[key] && extended, "key %q both claimed and extended", key)
			if claimed[key] || extended {
				union = append(union, key)
			}
		}
		for key := range bean.ExtendedProperties {
			assert.Contains(t, original, key)
		}

		sort.Strings(original)
		sort.Strings(union)
		assert.Equal(t, original, union)
	}
}

// assertPartition checks that every original key was either claimed by an
// extractor or kept in leftover, never both.
func assertPartition(t *testing.T, original, claimedNames []string, leftover map[string]any) {
	t.Helper()
	claimed := make(map[string]bool, len(claimedNames))
	for _, name := range claimedNames {
		claimed[name] = true
	}

	var union []string
	for _, key := range original {
		_, kept := leftover[key]
		assert.False(t, claimed[key] && kept, "key %q both claimed and kept", key)
		if claimed[key] || kept {
			union = append(union, key)
		}
	}
	for key := range leftover {
		assert.Contains(t, original, key)
	}

	original = append([]string(nil), original...)
	sort.Strings(original)
	sort.Strings(union)
	assert.Equal(t, original, union)
}

// fullBag sets every named property plus two sub-type properties.
func fullBag(names []string) *instance.Properties {
	p := instance.NewProperties()
	for _, name := range names {
		p.Set(name, instance.String("v"))
	}
	return p.Set("customA", instance.String("a")).Set("customB", instance.Int(2))
}

func TestProjection_NoLossOtherShapes(t *testing.T) {
	c, _, _ := newTestConverter()

	t.Run("column type", func(t *testing.T) {
		for _, bag := range []*instance.Properties{
			instance.NewProperties(),
			fullBag(nil),
			fullBag(ClaimedProperties(elements.ShapeDatabaseColumnType)),
		} {
			entity := instance.NewEntity("st-1", omrs.TypeSchemaType, bag)
			original := entity.Properties.Keys()

			bean, err := c.NewDatabaseColumnTypeBean(nil, entity, "noLoss")
			require.NoError(t, err)
			assertPartition(t, original, ClaimedProperties(elements.ShapeDatabaseColumnType), bean.ExtendedProperties)
		}
	})

	t.Run("reference value assignment item", func(t *testing.T) {
		shape := elements.ShapeReferenceValueAssignmentItem
		for _, full := range []bool{false, true} {
			entityBag, relBag := fullBag(nil), fullBag(nil)
			if full {
				entityBag = fullBag(ClaimedProperties(shape))
				relBag = fullBag(RelationshipClaimedProperties(shape))
			}
			entity := instance.NewEntity("col-1", omrs.TypeRelationalColumn, entityBag)
			rel := instance.NewRelationship("rva-1", omrs.RelationshipReferenceValueAssignment,
				instance.Proxy{GUID: "col-1"}, instance.Proxy{GUID: "vv-1"}, relBag)
			entityKeys, relKeys := entity.Properties.Keys(), rel.Properties.Keys()

			bean, err := c.NewReferenceValueAssignmentItemBean(nil, entity, rel, "noLoss")
			require.NoError(t, err)
			assertPartition(t, entityKeys, ClaimedProperties(shape), bean.AssignedItem.ExtendedProperties)
			assertPartition(t, relKeys, RelationshipClaimedProperties(shape), bean.RelationshipProperties)
		}
	})

	t.Run("foreign key", func(t *testing.T) {
		for _, bag := range []*instance.Properties{
			nil,
			fullBag(nil),
			fullBag(ClaimedProperties(elements.ShapeForeignKey)),
		} {
			rel := instance.NewRelationship("fk-1", omrs.RelationshipForeignKey,
				instance.Proxy{GUID: "a"}, instance.Proxy{GUID: "b"}, bag)
			original := rel.Properties.Keys()

			bean, err := c.NewForeignKeyBean(nil, rel, "noLoss")
			require.NoError(t, err)
			assertPartition(t, original, ClaimedProperties(elements.ShapeForeignKey), bean.ExtendedProperties)
		}
	})
}

func TestNewDatabaseColumnBean_OutOfRangeNumbersStayExtended(t *testing.T) {
	c, _, _ := newTestConverter()
	entity := columnEntity(map[string]any{
		"qualifiedName": "db.t.huge",
		"length":        "99999999999999999999",
		"position":      1e20,
		"minimumLength": 8,
	})

	bean, err := c.NewDatabaseColumnBean(nil, entity, nil, nil, "getColumn")
	require.NoError(t, err)

	assert.Zero(t, bean.Length)
	assert.Zero(t, bean.Position)
	assert.Equal(t, 8, bean.MinimumLength)
	assert.Equal(t, map[string]any{
		"length":   "99999999999999999999",
		"position": 1e20,
	}, bean.ExtendedProperties)
}

func TestNewDatabaseColumnBean_Classifications(t *testing.T) {
	c, _, _ := newTestConverter()

	entity := columnEntity(map[string]any{"qualifiedName": "db.t.id"})
	entity.Classifications = []instance.Classification{
		{
			Name: omrs.ClassificationTypeEmbeddedAttribute,
			Properties: instance.PropertiesFromMap(map[string]any{
				"dataType":       "INTEGER",
				"defaultValue":   "0",
				"schemaTypeName": "PrimitiveSchemaType",
			}),
		},
		{
			Name: omrs.ClassificationPrimaryKey,
			Properties: instance.NewProperties().
				Set("name", instance.String("pk_t")).
				Set("keyPattern", instance.Enum("NATURAL_KEY", 2)),
		},
	}

	bean, err := c.NewDatabaseColumnBean(nil, entity, nil, nil, "getColumn")
	require.NoError(t, err)

	assert.Equal(t, "INTEGER", bean.DataType)
	assert.Equal(t, "0", bean.DefaultValue)
	assert.Equal(t, "", bean.FixedValue)
	require.NotNil(t, bean.PrimaryKey)
	assert.Equal(t, "pk_t", bean.PrimaryKey.Name)
	assert.Equal(t, elements.KeyPatternNatural, bean.PrimaryKey.KeyPattern)
	assert.Nil(t, bean.ExtendedProperties)

	assert.Equal(t, []string{omrs.ClassificationTypeEmbeddedAttribute, omrs.ClassificationPrimaryKey},
		bean.ElementHeader.ClassificationNames())
	assert.Equal(t, "PrimitiveSchemaType", bean.ElementHeader.Classifications[0].Properties["schemaTypeName"])

	// Reading classification bags never consumes the record's own bags.
	cl, ok := entity.Classification(omrs.ClassificationTypeEmbeddedAttribute)
	require.True(t, ok)
	assert.Equal(t, 3, cl.Properties.Len())
}

func TestNewDatabaseColumnBean_WithoutClassifications(t *testing.T) {
	c, rep, _ := newTestConverter()

	bean, err := c.NewDatabaseColumnBean(nil, columnEntity(map[string]any{"qualifiedName": "q"}), nil, nil, "getColumn")
	require.NoError(t, err)
	assert.Equal(t, "", bean.DataType)
	assert.Nil(t, bean.PrimaryKey)
	assert.Empty(t, rep.all())
}

func TestNewDatabaseColumnBean_SchemaTypeCompanion(t *testing.T) {
	c, _, _ := newTestConverter()

	typeEntity := instance.NewEntity("st-1", omrs.TypePrimitiveSchemaType, instance.PropertiesFromMap(map[string]any{
		"qualifiedName": "db.t.c.type",
		"dataType":      "VARCHAR",
		"encoding":      "utf8",
	}))
	schemaType, err := c.NewDatabaseColumnTypeBean(nil, typeEntity, "getColumn")
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR", schemaType.DataType)
	assert.Equal(t, map[string]any{"encoding": "utf8"}, schemaType.ExtendedProperties)

	t.Run("column type is attached", func(t *testing.T) {
		bean, err := c.NewDatabaseColumnBean(nil, columnEntity(nil), schemaType, nil, "getColumn")
		require.NoError(t, err)
		assert.Same(t, schemaType, bean.SchemaType)
	})

	t.Run("other shapes are ignored", func(t *testing.T) {
		other := &elements.ForeignKeyElement{}
		bean, err := c.NewDatabaseColumnBean(nil, columnEntity(nil), other, nil, "getColumn")
		require.NoError(t, err)
		assert.Nil(t, bean.SchemaType)
	})

	t.Run("typed nil is ignored", func(t *testing.T) {
		var none *elements.DatabaseColumnTypeElement
		bean, err := c.NewDatabaseColumnBean(nil, columnEntity(nil), none, nil, "getColumn")
		require.NoError(t, err)
		assert.Nil(t, bean.SchemaType)
	})
}

func TestNewDatabaseColumnBean_ForeignKeys(t *testing.T) {
	c, _, _ := newTestConverter()

	fk := instance.NewRelationship("fk-1", omrs.RelationshipForeignKey,
		instance.Proxy{GUID: "pk-col"}, instance.Proxy{GUID: "col-1"},
		instance.PropertiesFromMap(map[string]any{"name": "fk_orders", "confidence": 80}))
	other := instance.NewRelationship("rel-2", omrs.RelationshipSchemaAttributeType,
		instance.Proxy{GUID: "col-1"}, instance.Proxy{GUID: "st-1"}, nil)

	bean, err := c.NewDatabaseColumnBean(nil, columnEntity(nil), nil, []*instance.Record{fk, other, nil}, "getColumn")
	require.NoError(t, err)
	require.Len(t, bean.ForeignKeys, 1)
	assert.Equal(t, "fk_orders", bean.ForeignKeys[0].Name)
	assert.Equal(t, 80, bean.ForeignKeys[0].Confidence)
	assert.Equal(t, "pk-col", bean.ForeignKeys[0].End1GUID)
	assert.Equal(t, "col-1", bean.ForeignKeys[0].End2GUID)
}

func TestNewDatabaseColumnBean_ForeignKeyTypeMismatch(t *testing.T) {
	c, _, _ := newTestConverter()

	// A ForeignKey type name on an entity record fails the relationship gate.
	bogus := instance.NewEntity("fk-1", omrs.RelationshipForeignKey, nil)

	bean, err := c.NewDatabaseColumnBean(nil, columnEntity(nil), nil, []*instance.Record{bogus}, "getColumn")
	assert.Nil(t, bean)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestProjection_AbsentPrimary(t *testing.T) {
	c, rep, m := newTestConverter()

	bean, err := c.NewDatabaseColumnBean(nil, nil, nil, nil, "getColumn")
	require.Error(t, err)
	require.NotNil(t, bean)

	assert.ErrorIs(t, err, ErrMissingInstance)
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, "", bean.TypeName)
	assert.Equal(t, "", bean.QualifiedName)
	assert.Nil(t, bean.ExtendedProperties)

	var pe *ProjectionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "entity expected", pe.ExpectedDescription())

	reports := rep.all()
	require.Len(t, reports, 1)
	assert.Equal(t, KindMissingMandatoryInstance, reports[0].Kind)
	assert.Equal(t, instance.CategoryEntity, reports[0].Expected)
	assert.Equal(t, "getColumn", reports[0].Operation)
	assert.Equal(t, "DatabaseColumnElement", reports[0].BeanName)
	assert.Empty(t, reports[0].DeclaredType)
	assert.NotEmpty(t, reports[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.projections.WithLabelValues(string(elements.ShapeDatabaseColumn), OutcomePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(string(elements.ShapeDatabaseColumn), string(KindMissingMandatoryInstance))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.projections.WithLabelValues(string(elements.ShapeDatabaseColumn), OutcomeFailed)))
}

func TestProjection_TypeGate(t *testing.T) {
	rel := instance.NewRelationship("rel-1", omrs.RelationshipForeignKey,
		instance.Proxy{GUID: "a"}, instance.Proxy{GUID: "b"},
		instance.PropertiesFromMap(map[string]any{"qualifiedName": "should not be read"}))
	entity := columnEntity(map[string]any{"name": "should not be read"})

	tests := []struct {
		name    string
		shape   elements.Shape
		project func(c *Converter, f elements.Factory) (elements.Bean, error)
		record  *instance.Record
	}{
		{
			name:  "relationship against column",
			shape: elements.ShapeDatabaseColumn,
			project: func(c *Converter, f elements.Factory) (elements.Bean, error) {
				return c.NewDatabaseColumnBean(f, rel, nil, nil, "op")
			},
			record: rel,
		},
		{
			name:  "relationship against column type",
			shape: elements.ShapeDatabaseColumnType,
			project: func(c *Converter, f elements.Factory) (elements.Bean, error) {
				return c.NewDatabaseColumnTypeBean(f, rel, "op")
			},
			record: rel,
		},
		{
			name:  "relationship against assigned item",
			shape: elements.ShapeReferenceValueAssignmentItem,
			project: func(c *Converter, f elements.Factory) (elements.Bean, error) {
				return c.NewReferenceValueAssignmentItemBean(f, rel, nil, "op")
			},
			record: rel,
		},
		{
			name:  "entity against foreign key",
			shape: elements.ShapeForeignKey,
			project: func(c *Converter, f elements.Factory) (elements.Bean, error) {
				return c.NewForeignKeyBean(f, entity, "op")
			},
			record: entity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rep, m := newTestConverter()

			// Keep hold of the bean handed to the converter so that its
			// fields can be checked after the failure.
			var built elements.Bean
			factory := func(s elements.Shape) (elements.Bean, error) {
				b, err := elements.NewBean(s)
				built = b
				return b, err
			}

			bean, err := tt.project(c, factory)
			assert.True(t, bean == nil || isNilBean(bean))
			require.ErrorIs(t, err, ErrTypeMismatch)
			assert.False(t, IsRecoverable(err))

			fresh, err := elements.NewBean(tt.shape)
			require.NoError(t, err)
			require.NotNil(t, built)
			assert.Equal(t, fresh, built, "no field may be filled before the gate")
			assert.Zero(t, testutil.CollectAndCount(m.extended), "no properties harvested")

			reports := rep.all()
			require.Len(t, reports, 1)
			assert.Equal(t, KindTypeMismatch, reports[0].Kind)
			assert.Contains(t, reports[0].DeclaredType, tt.record.Type.Name)
		})
	}
}

// isNilBean reports whether a typed nil pointer was returned inside the
// Bean interface.
func isNilBean(b elements.Bean) bool {
	switch v := b.(type) {
	case *elements.DatabaseColumnElement:
		return v == nil
	case *elements.DatabaseColumnTypeElement:
		return v == nil
	case *elements.ReferenceValueAssignmentItemElement:
		return v == nil
	case *elements.ForeignKeyElement:
		return v == nil
	}
	return false
}

func TestProjection_FactoryFailures(t *testing.T) {
	tests := []struct {
		name    string
		factory elements.Factory
		kind    Kind
		target  error
	}{
		{
			name: "factory error",
			factory: func(elements.Shape) (elements.Bean, error) {
				return nil, errors.New("out of beans")
			},
			kind:   KindBeanConstruction,
			target: ErrBeanConstruction,
		},
		{
			name: "factory returns nothing",
			factory: func(elements.Shape) (elements.Bean, error) {
				return nil, nil
			},
			kind:   KindBeanConstruction,
			target: ErrBeanConstruction,
		},
		{
			name: "factory returns typed nil",
			factory: func(elements.Shape) (elements.Bean, error) {
				var b *elements.DatabaseColumnElement
				return b, nil
			},
			kind:   KindBeanConstruction,
			target: ErrBeanConstruction,
		},
		{
			name: "factory returns wrong shape",
			factory: func(elements.Shape) (elements.Bean, error) {
				return &elements.ForeignKeyElement{}, nil
			},
			kind:   KindInvalidBeanClass,
			target: ErrInvalidBeanClass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rep, m := newTestConverter()

			bean, err := c.NewDatabaseColumnBean(tt.factory, columnEntity(nil), nil, nil, "getColumn")
			assert.Nil(t, bean)
			require.ErrorIs(t, err, tt.target)
			assert.False(t, IsRecoverable(err))

			reports := rep.all()
			require.Len(t, reports, 1)
			assert.Equal(t, tt.kind, reports[0].Kind)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.projections.WithLabelValues(string(elements.ShapeDatabaseColumn), OutcomeFailed)))
		})
	}
}

func TestProjection_FactoryCauseIsWrapped(t *testing.T) {
	cause := errors.New("out of beans")
	c := NewConverter()

	_, err := c.NewForeignKeyBean(func(elements.Shape) (elements.Bean, error) {
		return nil, cause
	}, nil, "op")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrBeanConstruction)
	assert.Contains(t, err.Error(), "out of beans")
}

func TestProjection_CustomFactory(t *testing.T) {
	c, _, _ := newTestConverter()

	var asked []elements.Shape
	factory := func(s elements.Shape) (elements.Bean, error) {
		asked = append(asked, s)
		return elements.NewBean(s)
	}

	fk := instance.NewRelationship("fk-1", omrs.RelationshipForeignKey,
		instance.Proxy{GUID: "a"}, instance.Proxy{GUID: "b"}, nil)

	_, err := c.NewDatabaseColumnBean(factory, columnEntity(nil), nil, []*instance.Record{fk}, "op")
	require.NoError(t, err)
	assert.Equal(t, []elements.Shape{elements.ShapeDatabaseColumn, elements.ShapeForeignKey}, asked)
}

func TestProjection_ConcurrentCallsShareRecord(t *testing.T) {
	c, _, _ := newTestConverter()
	entity := columnEntity(map[string]any{"qualifiedName": "db.col1", "position": 3, "customX": "42"})

	var wg sync.WaitGroup
	results := make([]*elements.DatabaseColumnElement, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bean, err := c.NewDatabaseColumnBean(nil, entity, nil, nil, "op")
			if err == nil {
				results[i] = bean
			}
		}(i)
	}
	wg.Wait()

	for _, bean := range results {
		require.NotNil(t, bean)
		assert.Equal(t, "db.col1", bean.QualifiedName)
		assert.Equal(t, 3, bean.Position)
		assert.Equal(t, map[string]any{"customX": "42"}, bean.ExtendedProperties)
	}
	assert.Equal(t, 3, entity.Properties.Len())
}

func TestClaimedProperties(t *testing.T) {
	assert.Contains(t, ClaimedProperties(elements.ShapeDatabaseColumn), "significantDigits")
	assert.NotContains(t, ClaimedProperties(elements.ShapeDatabaseColumn), "dataType")
	assert.Contains(t, ClaimedProperties(elements.ShapeDatabaseColumnType), "dataType")
	assert.Equal(t, []string{"qualifiedName", "additionalProperties"},
		ClaimedProperties(elements.ShapeReferenceValueAssignmentItem))
	assert.Equal(t, []string{"name", "description", "confidence", "steward", "source"},
		ClaimedProperties(elements.ShapeForeignKey))
	assert.Empty(t, ClaimedProperties(elements.Shape("nope")))
}
