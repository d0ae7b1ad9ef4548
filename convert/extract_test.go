package convert

import (
	"math"
	"testing"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntExtractor(t *testing.T) {
	tests := []struct {
		name  string
		value instance.Value
		want  int
	}{
		{"int", instance.Int(7), 7},
		{"numeric string", instance.String("3"), 3},
		{"padded string", instance.String(" 12 "), 12},
		{"float string", instance.String("4.9"), 4},
		{"float", instance.Float(2.5), 2},
		{"enum ordinal", instance.Enum("DESCENDING", 2), 2},
		{"unparseable", instance.String("three"), 0},
		{"bool", instance.Bool(true), 0},
		{"large value is not clamped", instance.Int(1 << 40), 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := instance.NewProperties().Set("position", tt.value)
			assert.Equal(t, tt.want, Position.Remove(p))
			assert.Equal(t, 0, p.Len())
		})
	}
}

func TestIntExtractorLeavesOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		value instance.Value
		raw   any
	}{
		{"string above int64", instance.String("99999999999999999999"), "99999999999999999999"},
		{"float string above int64", instance.String("-1e30"), "-1e30"},
		{"float above int64", instance.Float(1e20), 1e20},
		{"float below int64", instance.Float(-1e20), -1e20},
		{"float at 2^63", instance.Float(math.Exp2(63)), math.Exp2(63)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := instance.NewProperties().Set("length", tt.value)

			assert.Equal(t, 0, Length.Remove(p))
			assert.Equal(t, 0, Length.Remove(p), "second remove still returns the default")
			assert.Equal(t, map[string]any{"length": tt.raw}, p.Remainder())
		})
	}

	p := instance.NewProperties().Set("length", instance.Float(math.NaN()))
	assert.Equal(t, 0, Length.Remove(p))
	assert.Equal(t, 1, p.Len())
}

func TestBoolExtractor(t *testing.T) {
	tests := []struct {
		name  string
		value instance.Value
		want  bool
	}{
		{"bool", instance.Bool(true), true},
		{"string true", instance.String("true"), true},
		{"string false", instance.String("false"), false},
		{"int", instance.Int(1), true},
		{"garbage", instance.String("maybe"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := instance.NewProperties().Set("isNullable", tt.value)
			assert.Equal(t, tt.want, IsNullable.Remove(p))
		})
	}
}

func TestStringExtractorRendersPrimitives(t *testing.T) {
	p := instance.NewProperties().
		Set("displayName", instance.Int(42)).
		Set("description", instance.Bool(true))

	assert.Equal(t, "42", DisplayName.Remove(p))
	assert.Equal(t, "true", Description.Remove(p))
}

func TestExtractorsReturnDefaultOnSecondRemove(t *testing.T) {
	p := instance.NewProperties().
		Set("qualifiedName", instance.String("db.col1")).
		Set("position", instance.Int(3)).
		Set("isNullable", instance.Bool(true)).
		Set("aliases", instance.Array(instance.String("c1"))).
		Set("additionalProperties", instance.Map(instance.PropertiesFromMap(map[string]any{"k": "v"}))).
		Set("sortOrder", instance.Enum("ASCENDING", 1))

	assert.Equal(t, "db.col1", QualifiedName.Remove(p))
	assert.Equal(t, "", QualifiedName.Remove(p))

	assert.Equal(t, 3, Position.Remove(p))
	assert.Equal(t, 0, Position.Remove(p))

	assert.True(t, IsNullable.Remove(p))
	assert.False(t, IsNullable.Remove(p))

	assert.Equal(t, []string{"c1"}, Aliases.Remove(p))
	assert.Nil(t, Aliases.Remove(p))

	assert.Equal(t, map[string]string{"k": "v"}, AdditionalProperties.Remove(p))
	assert.Nil(t, AdditionalProperties.Remove(p))

	assert.Equal(t, elements.SortOrderAscending, SortOrder.Remove(p))
	assert.Equal(t, elements.SortOrderUnknown, SortOrder.Remove(p))

	assert.Equal(t, 0, p.Len())
}

func TestExtractorsOnNilBag(t *testing.T) {
	var p *instance.Properties
	assert.Equal(t, "", QualifiedName.Remove(p))
	assert.Equal(t, 0, Position.Remove(p))
	assert.False(t, IsNullable.Remove(p))
	assert.Nil(t, Aliases.Remove(p))
	assert.Nil(t, AdditionalProperties.Remove(p))
	assert.Equal(t, elements.KeyPatternLocal, KeyPattern.Remove(p))
}

func TestEnumExtractor(t *testing.T) {
	tests := []struct {
		name string
		bag  *instance.Properties
		want elements.KeyPattern
	}{
		{
			name: "absent uses default",
			bag:  instance.NewProperties(),
			want: elements.KeyPatternLocal,
		},
		{
			name: "enum literal",
			bag:  instance.NewProperties().Set("keyPattern", instance.Enum("NATURAL_KEY", 2)),
			want: elements.KeyPatternNatural,
		},
		{
			name: "string literal",
			bag:  instance.NewProperties().Set("keyPattern", instance.String("MIRROR_KEY")),
			want: elements.KeyPatternMirror,
		},
		{
			name: "unknown literal uses fallback",
			bag:  instance.NewProperties().Set("keyPattern", instance.String("SPARKLY_KEY")),
			want: elements.KeyPatternOther,
		},
		{
			name: "wrong kind uses fallback",
			bag:  instance.NewProperties().Set("keyPattern", instance.Int(3)),
			want: elements.KeyPatternOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyPattern.Remove(tt.bag))
		})
	}
}

func TestStringListExtractor(t *testing.T) {
	p := instance.NewProperties().Set("aliases", instance.String("only"))
	assert.Equal(t, []string{"only"}, Aliases.Remove(p))

	p.Set("aliases", instance.Array())
	assert.Nil(t, Aliases.Remove(p))

	p.Set("aliases", instance.Array(instance.String("a"), instance.Int(2)))
	assert.Equal(t, []string{"a", "2"}, Aliases.Remove(p))
}

func TestClassificationProperties(t *testing.T) {
	r := instance.NewEntity("g1", "RelationalColumn", instance.NewProperties())

	t.Run("absent classification yields empty bag", func(t *testing.T) {
		bag := ClassificationProperties(r, "TypeEmbeddedAttribute")
		require.NotNil(t, bag)
		assert.Equal(t, 0, bag.Len())
		assert.Equal(t, "", DataType.Remove(bag))
	})

	t.Run("nil record yields empty bag", func(t *testing.T) {
		bag := ClassificationProperties(nil, "TypeEmbeddedAttribute")
		require.NotNil(t, bag)
		assert.Equal(t, 0, bag.Len())
	})

	t.Run("returns a private copy", func(t *testing.T) {
		r.Classifications = append(r.Classifications, instance.Classification{
			Name:       "TypeEmbeddedAttribute",
			Properties: instance.NewProperties().Set("dataType", instance.String("VARCHAR")),
		})
		bag := ClassificationProperties(r, "TypeEmbeddedAttribute")
		assert.Equal(t, "VARCHAR", DataType.Remove(bag))

		c, ok := r.Classification("TypeEmbeddedAttribute")
		require.True(t, ok)
		_, still := c.Properties.Get("dataType")
		assert.True(t, still)
	})
}
