package omrs

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// Referenceable properties shared by every bean shape.
const (
	// QualifiedName is the unique name of the element.
	QualifiedName = "qualifiedName"

	// AdditionalProperties is a free-form string map set by the creator.
	AdditionalProperties = "additionalProperties"

	// DisplayName is the human readable name.
	DisplayName = "displayName"

	// Description is the element description.
	Description = "description"
)

// Schema attribute properties.
const (
	Position              = "position"
	MinCardinality        = "minCardinality"
	MaxCardinality        = "maxCardinality"
	AllowsDuplicateValues = "allowsDuplicateValues"
	OrderedValues         = "orderedValues"
	DefaultValueOverride  = "defaultValueOverride"

	// SortOrder holds a DataItemSortOrder enum literal.
	SortOrder = "sortOrder"

	MinimumLength = "minimumLength"
	Length        = "length"

	// SignificantDigits is the numeric precision of the column.
	SignificantDigits = "significantDigits"

	IsNullable  = "isNullable"
	NativeClass = "nativeClass"
	Aliases     = "aliases"
)

// Schema type properties. DataType, DefaultValue and FixedValue also appear
// in the TypeEmbeddedAttribute classification.
const (
	DataType         = "dataType"
	DefaultValue     = "defaultValue"
	FixedValue       = "fixedValue"
	VersionNumber    = "versionNumber"
	Author           = "author"
	Usage            = "usage"
	EncodingStandard = "encodingStandard"
	SchemaNamespace  = "namespace"
)

// Relationship-scoped properties.
const (
	// Confidence is a 0-100 percentage. Values outside that range are kept as is.
	Confidence = "confidence"

	Steward             = "steward"
	StewardTypeName     = "stewardTypeName"
	StewardPropertyName = "stewardPropertyName"
	Notes               = "notes"
	Source              = "source"
)

// Classification-scoped properties.
const (
	// Name is the name of a key or other named classification.
	Name = "name"

	// KeyPattern holds a KeyPattern enum literal.
	KeyPattern = "keyPattern"
)

type property struct {
	name        string
	description string
	dataType    string
	iri         string
}

var properties = []property{
	{QualifiedName, "Unique name of the element", "string", SkosNotation},
	{AdditionalProperties, "Free-form string properties supplied by the creator", "map", ""},
	{DisplayName, "Human readable name", "string", DcTitle},
	{Description, "Description of the element", "string", DcDescription},
	{Position, "Position of the attribute within its parent schema", "int", ""},
	{MinCardinality, "Minimum number of values", "int", ""},
	{MaxCardinality, "Maximum number of values, -1 for unbounded", "int", ""},
	{AllowsDuplicateValues, "Whether duplicate values are allowed", "bool", ""},
	{OrderedValues, "Whether values are ordered", "bool", ""},
	{DefaultValueOverride, "Default value that overrides the schema type default", "string", ""},
	{SortOrder, "Sort order of the values: UNKNOWN, ASCENDING, DESCENDING, UNSORTED", "enum", ""},
	{MinimumLength, "Minimum length of a value", "int", ""},
	{Length, "Length of a value", "int", ""},
	{SignificantDigits, "Number of significant digits to the right of the decimal point", "int", ""},
	{IsNullable, "Whether the attribute accepts null values", "bool", ""},
	{NativeClass, "Name of the native class used to hold the value", "string", ""},
	{Aliases, "Alternative names for the attribute", "array", ""},
	{DataType, "Data type of the value", "string", ""},
	{DefaultValue, "Default value of the type", "string", ""},
	{FixedValue, "Fixed value of the type", "string", ""},
	{VersionNumber, "Version of the schema type", "string", ""},
	{Author, "Author of the schema type", "string", DcCreator},
	{Usage, "Guidance on how the schema type is used", "string", ""},
	{EncodingStandard, "Format of the encoded values", "string", ""},
	{SchemaNamespace, "Namespace of the schema type", "string", ""},
	{Confidence, "Level of confidence in the relationship, 0-100", "int", ""},
	{Steward, "Identifier of the steward that assigned the relationship", "string", ""},
	{StewardTypeName, "Type of element that identifies the steward", "string", ""},
	{StewardPropertyName, "Property of the steward element that holds the identifier", "string", ""},
	{Notes, "Notes on the relationship", "string", ""},
	{Source, "Source of the relationship", "string", ""},
	{Name, "Name of the classification-scoped concept", "string", ""},
	{KeyPattern, "Key pattern: LOCAL_KEY, RECYCLED_KEY, NATURAL_KEY, MIRROR_KEY, AGGREGATE_KEY, CALLERS_KEY, STABLE_KEY, OTHER", "enum", ""},
}

func init() {
	for _, p := range properties {
		iri := p.iri
		if iri == "" {
			iri = Namespace + p.name
		}
		vocabulary.Register(Predicate(p.name),
			vocabulary.WithDescription(p.description),
			vocabulary.WithDataType(p.dataType),
			vocabulary.WithIRI(iri))
	}
}

// Predicate returns the registered predicate for a property name.
func Predicate(name string) string {
	return PredicatePrefix + name
}

// PropertyName returns the property name carried by a predicate. Predicates
// outside the omrs namespace yield their last dotted segment so that
// sub-type properties from other vocabularies still land in the bag.
func PropertyName(predicate string) string {
	if name, ok := strings.CutPrefix(predicate, PredicatePrefix); ok {
		return name
	}
	if i := strings.LastIndexByte(predicate, '.'); i >= 0 {
		return predicate[i+1:]
	}
	return predicate
}

// DataTypeOf returns the registered data type of a property, or "" when the
// property is not part of the vocabulary.
func DataTypeOf(name string) string {
	meta := vocabulary.GetPredicateMetadata(Predicate(name))
	if meta == nil {
		return ""
	}
	return meta.DataType
}

// Properties returns every canonical property name in registration order.
func Properties() []string {
	names := make([]string, len(properties))
	for i, p := range properties {
		names[i] = p.name
	}
	return names
}
