package elements

// Bean is implemented by every projected structure. The unexported method
// closes the set to the types in this package.
type Bean interface {
	// Shape returns the shape tag of the bean.
	Shape() Shape

	// Base returns the element part that carries the header, the type name
	// and the extended properties.
	Base() *Element

	bean()
}

// Element holds the fields every bean shares. TypeName always equals
// ElementHeader.Type.TypeName once projected, so extended properties can be
// reinterpreted against the right sub-type later.
type Element struct {
	ElementHeader      ElementHeader  `json:"element_header"`
	TypeName           string         `json:"type_name,omitempty"`
	ExtendedProperties map[string]any `json:"extended_properties,omitempty"`
}

// Base returns the element itself.
func (e *Element) Base() *Element { return e }

func (e *Element) bean() {}

// Referenceable adds the properties of any uniquely named element.
type Referenceable struct {
	Element
	QualifiedName        string            `json:"qualified_name,omitempty"`
	AdditionalProperties map[string]string `json:"additional_properties,omitempty"`
}

// ReferenceableElement is a referenceable with no further typed properties.
// It is used for the assigned item of a reference value assignment.
type ReferenceableElement struct {
	Referenceable
}

// DatabaseColumnTypeElement is the schema type of a database column.
type DatabaseColumnTypeElement struct {
	Referenceable
	DisplayName      string `json:"display_name,omitempty"`
	Description      string `json:"description,omitempty"`
	VersionNumber    string `json:"version_number,omitempty"`
	Author           string `json:"author,omitempty"`
	Usage            string `json:"usage,omitempty"`
	EncodingStandard string `json:"encoding_standard,omitempty"`
	Namespace        string `json:"namespace,omitempty"`
	DataType         string `json:"data_type,omitempty"`
	DefaultValue     string `json:"default_value,omitempty"`
	FixedValue       string `json:"fixed_value,omitempty"`
}

func (*DatabaseColumnTypeElement) Shape() Shape { return ShapeDatabaseColumnType }

// PrimaryKey is present on a column carrying the PrimaryKey classification.
type PrimaryKey struct {
	Name       string     `json:"name,omitempty"`
	KeyPattern KeyPattern `json:"key_pattern"`
}

// DatabaseColumnElement is a column of a relational table.
type DatabaseColumnElement struct {
	Referenceable
	DisplayName           string    `json:"display_name,omitempty"`
	Description           string    `json:"description,omitempty"`
	Position              int       `json:"position"`
	MinCardinality        int       `json:"min_cardinality"`
	MaxCardinality        int       `json:"max_cardinality"`
	AllowsDuplicateValues bool      `json:"allows_duplicate_values"`
	OrderedValues         bool      `json:"ordered_values"`
	DefaultValueOverride  string    `json:"default_value_override,omitempty"`
	SortOrder             SortOrder `json:"sort_order"`
	MinimumLength         int       `json:"minimum_length"`
	Length                int       `json:"length"`
	Precision             int       `json:"precision"`
	IsNullable            bool      `json:"is_nullable"`
	NativeClass           string    `json:"native_class,omitempty"`
	Aliases               []string  `json:"aliases,omitempty"`

	// DataType, DefaultValue and FixedValue come from the
	// TypeEmbeddedAttribute classification.
	DataType     string `json:"data_type,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	FixedValue   string `json:"fixed_value,omitempty"`

	PrimaryKey  *PrimaryKey                `json:"primary_key,omitempty"`
	SchemaType  *DatabaseColumnTypeElement `json:"schema_type,omitempty"`
	ForeignKeys []*ForeignKeyElement       `json:"foreign_keys,omitempty"`
}

func (*DatabaseColumnElement) Shape() Shape { return ShapeDatabaseColumn }

// ReferenceValueAssignmentItemElement combines an assigned item with the
// properties of the ReferenceValueAssignment relationship that links it.
type ReferenceValueAssignmentItemElement struct {
	AssignedItem       ReferenceableElement `json:"assigned_item"`
	RelationshipHeader *ElementHeader       `json:"relationship_header,omitempty"`

	Confidence          int    `json:"confidence"`
	Steward             string `json:"steward,omitempty"`
	StewardTypeName     string `json:"steward_type_name,omitempty"`
	StewardPropertyName string `json:"steward_property_name,omitempty"`
	Notes               string `json:"notes,omitempty"`

	// RelationshipProperties holds relationship properties no extractor claimed.
	RelationshipProperties map[string]any `json:"relationship_properties,omitempty"`
}

func (*ReferenceValueAssignmentItemElement) Shape() Shape {
	return ShapeReferenceValueAssignmentItem
}

// Base returns the assigned item's element, which carries the header and
// extended properties of the entity.
func (b *ReferenceValueAssignmentItemElement) Base() *Element {
	return &b.AssignedItem.Element
}

func (b *ReferenceValueAssignmentItemElement) bean() {}

// ForeignKeyElement is a ForeignKey relationship between two columns.
// End1 is the primary key column, End2 the referencing column.
type ForeignKeyElement struct {
	Element
	End1GUID    string `json:"end1_guid"`
	End2GUID    string `json:"end2_guid"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Confidence  int    `json:"confidence"`
	Steward     string `json:"steward,omitempty"`
	Source      string `json:"source,omitempty"`
}

func (*ForeignKeyElement) Shape() Shape { return ShapeForeignKey }
