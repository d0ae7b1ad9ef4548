package omrs

// Entity type names consumed by the shipped bean shapes.
const (
	TypeReferenceable       = "Referenceable"
	TypeSchemaAttribute     = "SchemaAttribute"
	TypeTabularColumn       = "TabularColumn"
	TypeRelationalColumn    = "RelationalColumn"
	TypeSchemaType          = "SchemaType"
	TypePrimitiveSchemaType = "PrimitiveSchemaType"
	TypeValidValueSet       = "ValidValuesSet"
)

// Relationship type names.
const (
	// RelationshipSchemaAttributeType links a schema attribute to its schema type.
	RelationshipSchemaAttributeType = "SchemaAttributeType"

	// RelationshipReferenceValueAssignment links an element to a reference value.
	RelationshipReferenceValueAssignment = "ReferenceValueAssignment"

	// RelationshipForeignKey links a primary key column to a foreign key column.
	RelationshipForeignKey = "ForeignKey"
)

// Classification names.
const (
	// ClassificationTypeEmbeddedAttribute carries the schema type properties
	// of an attribute whose type is not a separate entity.
	ClassificationTypeEmbeddedAttribute = "TypeEmbeddedAttribute"

	// ClassificationPrimaryKey marks a column as a primary key.
	ClassificationPrimaryKey = "PrimaryKey"
)
