package convert

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/vocabulary/omrs"
)

// Extractor is bound to exactly one property name. Each concrete extractor
// has a Remove method that returns the coerced value and deletes the entry
// from the bag; a second Remove on the same bag returns the default.
type Extractor interface {
	PropertyName() string
}

// StringExtractor claims a string property. Non-string primitives are
// rendered as text.
type StringExtractor struct{ Property string }

func (e StringExtractor) PropertyName() string { return e.Property }

// Remove returns the property as a string, or "" when absent.
func (e StringExtractor) Remove(p *instance.Properties) string {
	v, ok := p.Extract(e.Property)
	if !ok {
		return ""
	}
	return v.Text()
}

// IntExtractor claims an integer property. Strings are parsed; values are
// never clamped. A number an int cannot represent is left in the bag, so it
// reaches the extended properties unchanged.
type IntExtractor struct{ Property string }

func (e IntExtractor) PropertyName() string { return e.Property }

// Remove returns the property as an int, or 0 when absent, unparseable or
// out of range.
func (e IntExtractor) Remove(p *instance.Properties) int {
	v, ok := p.Get(e.Property)
	if !ok {
		return 0
	}
	n, fits := intValue(v)
	if !fits {
		return 0
	}
	p.Extract(e.Property)
	return n
}

// intValue coerces v to an int. It reports false only for numbers outside
// the int range; anything else that is not numeric coerces to 0.
func intValue(v instance.Value) (int, bool) {
	switch v.Kind() {
	case instance.KindInt:
		n := v.IntValue()
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case instance.KindFloat:
		return floatToInt(v.FloatValue())
	case instance.KindEnum:
		return v.Ordinal(), true
	case instance.KindString:
		s := strings.TrimSpace(v.Str())
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return intValue(instance.Int(n))
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, true
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

// BoolExtractor claims a boolean property.
type BoolExtractor struct{ Property string }

func (e BoolExtractor) PropertyName() string { return e.Property }

// Remove returns the property as a bool, or false when absent or unparseable.
func (e BoolExtractor) Remove(p *instance.Properties) bool {
	v, ok := p.Extract(e.Property)
	if !ok {
		return false
	}
	switch v.Kind() {
	case instance.KindBool:
		return v.BoolValue()
	case instance.KindInt:
		return v.IntValue() != 0
	case instance.KindString:
		b, err := strconv.ParseBool(strings.TrimSpace(v.Str()))
		return err == nil && b
	}
	return false
}

// StringMapExtractor claims a nested map of strings.
type StringMapExtractor struct{ Property string }

func (e StringMapExtractor) PropertyName() string { return e.Property }

// Remove returns the nested map with values rendered as text, or nil.
func (e StringMapExtractor) Remove(p *instance.Properties) map[string]string {
	v, ok := p.Extract(e.Property)
	if !ok || v.Kind() != instance.KindMap || v.Nested().Len() == 0 {
		return nil
	}
	out := make(map[string]string, v.Nested().Len())
	v.Nested().Range(func(key string, item instance.Value) bool {
		out[key] = item.Text()
		return true
	})
	return out
}

// StringListExtractor claims an array of strings. A single string is
// treated as a one-element list.
type StringListExtractor struct{ Property string }

func (e StringListExtractor) PropertyName() string { return e.Property }

// Remove returns the list, or nil when absent.
func (e StringListExtractor) Remove(p *instance.Properties) []string {
	v, ok := p.Extract(e.Property)
	if !ok {
		return nil
	}
	switch v.Kind() {
	case instance.KindArray:
		if len(v.Items()) == 0 {
			return nil
		}
		out := make([]string, len(v.Items()))
		for i, item := range v.Items() {
			out[i] = item.Text()
		}
		return out
	case instance.KindString:
		return []string{v.Str()}
	}
	return nil
}

// EnumExtractor claims an enum property, matched by symbolic name. Absent
// properties yield Default; unknown literals yield Fallback.
type EnumExtractor[E any] struct {
	Property string
	Lookup   func(string) (E, bool)
	Default  E
	Fallback E
}

func (e EnumExtractor[E]) PropertyName() string { return e.Property }

// Remove returns the enum value for the property.
func (e EnumExtractor[E]) Remove(p *instance.Properties) E {
	v, ok := p.Extract(e.Property)
	if !ok {
		return e.Default
	}
	if v.Kind() != instance.KindEnum && v.Kind() != instance.KindString {
		return e.Fallback
	}
	if out, found := e.Lookup(v.Str()); found {
		return out
	}
	return e.Fallback
}

// Referenceable extractors.
var (
	QualifiedName        = StringExtractor{omrs.QualifiedName}
	AdditionalProperties = StringMapExtractor{omrs.AdditionalProperties}
	DisplayName          = StringExtractor{omrs.DisplayName}
	Description          = StringExtractor{omrs.Description}
)

// Schema attribute extractors.
var (
	Position              = IntExtractor{omrs.Position}
	MinCardinality        = IntExtractor{omrs.MinCardinality}
	MaxCardinality        = IntExtractor{omrs.MaxCardinality}
	AllowsDuplicateValues = BoolExtractor{omrs.AllowsDuplicateValues}
	OrderedValues         = BoolExtractor{omrs.OrderedValues}
	DefaultValueOverride  = StringExtractor{omrs.DefaultValueOverride}
	SortOrder             = EnumExtractor[elements.SortOrder]{
		Property: omrs.SortOrder,
		Lookup:   elements.SortOrderFromName,
		Default:  elements.SortOrderUnknown,
		Fallback: elements.SortOrderUnknown,
	}
	MinimumLength     = IntExtractor{omrs.MinimumLength}
	Length            = IntExtractor{omrs.Length}
	SignificantDigits = IntExtractor{omrs.SignificantDigits}
	IsNullable        = BoolExtractor{omrs.IsNullable}
	NativeClass       = StringExtractor{omrs.NativeClass}
	Aliases           = StringListExtractor{omrs.Aliases}
)

// Schema type extractors.
var (
	DataType         = StringExtractor{omrs.DataType}
	DefaultValue     = StringExtractor{omrs.DefaultValue}
	FixedValue       = StringExtractor{omrs.FixedValue}
	VersionNumber    = StringExtractor{omrs.VersionNumber}
	Author           = StringExtractor{omrs.Author}
	Usage            = StringExtractor{omrs.Usage}
	EncodingStandard = StringExtractor{omrs.EncodingStandard}
	SchemaNamespace  = StringExtractor{omrs.SchemaNamespace}
)

// Relationship extractors.
var (
	Confidence          = IntExtractor{omrs.Confidence}
	Steward             = StringExtractor{omrs.Steward}
	StewardTypeName     = StringExtractor{omrs.StewardTypeName}
	StewardPropertyName = StringExtractor{omrs.StewardPropertyName}
	Notes               = StringExtractor{omrs.Notes}
	Source              = StringExtractor{omrs.Source}
)

// Classification extractors.
var (
	Name       = StringExtractor{omrs.Name}
	KeyPattern = EnumExtractor[elements.KeyPattern]{
		Property: omrs.KeyPattern,
		Lookup:   elements.KeyPatternFromName,
		Default:  elements.KeyPatternLocal,
		Fallback: elements.KeyPatternOther,
	}
)
