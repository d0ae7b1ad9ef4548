package convert

import (
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/vocabulary/omrs"
)

var columnSequence = []Extractor{
	QualifiedName,
	AdditionalProperties,
	DisplayName,
	Description,
	Position,
	MinCardinality,
	MaxCardinality,
	AllowsDuplicateValues,
	OrderedValues,
	DefaultValueOverride,
	SortOrder,
	MinimumLength,
	Length,
	SignificantDigits,
	IsNullable,
	NativeClass,
	Aliases,
}

var columnTypeSequence = []Extractor{
	QualifiedName,
	AdditionalProperties,
	DisplayName,
	Description,
	VersionNumber,
	Author,
	Usage,
	EncodingStandard,
	SchemaNamespace,
	DataType,
	DefaultValue,
	FixedValue,
}

// NewDatabaseColumnBean projects a schema attribute entity into a
// DatabaseColumnElement.
//
// schemaType is the separately resolved column type; it is attached only
// when it is a *elements.DatabaseColumnTypeElement and otherwise ignored.
// ForeignKey relationships among relationships are projected with the same
// factory and listed on the column; relationships of other types are
// ignored.
//
// A nil entity yields the empty bean together with a recoverable
// MissingMandatoryInstance error.
func (c *Converter) NewDatabaseColumnBean(factory elements.Factory,
	entity *instance.Record,
	schemaType elements.Bean,
	relationships []*instance.Record,
	operation string) (*elements.DatabaseColumnElement, error) {
	const shape = elements.ShapeDatabaseColumn

	bean, err := construct[*elements.DatabaseColumnElement](c, factory, shape, operation)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		return bean, c.missing(shape, instance.CategoryEntity, operation)
	}

	header, err := ProjectHeader(entity, shape, operation)
	if err != nil {
		return nil, c.failHeader(err)
	}

	// The initial set of values come from the entity.
	props := entity.Properties.Clone()

	bean.QualifiedName = QualifiedName.Remove(props)
	bean.AdditionalProperties = AdditionalProperties.Remove(props)
	bean.DisplayName = DisplayName.Remove(props)
	bean.Description = Description.Remove(props)

	bean.Position = Position.Remove(props)
	bean.MinCardinality = MinCardinality.Remove(props)
	bean.MaxCardinality = MaxCardinality.Remove(props)
	bean.AllowsDuplicateValues = AllowsDuplicateValues.Remove(props)
	bean.OrderedValues = OrderedValues.Remove(props)
	bean.DefaultValueOverride = DefaultValueOverride.Remove(props)
	bean.SortOrder = SortOrder.Remove(props)
	bean.MinimumLength = MinimumLength.Remove(props)
	bean.Length = Length.Remove(props)
	bean.Precision = SignificantDigits.Remove(props)
	bean.IsNullable = IsNullable.Remove(props)
	bean.NativeClass = NativeClass.Remove(props)
	bean.Aliases = Aliases.Remove(props)

	embedded := ClassificationProperties(entity, omrs.ClassificationTypeEmbeddedAttribute)
	bean.DataType = DataType.Remove(embedded)
	bean.DefaultValue = DefaultValue.Remove(embedded)
	bean.FixedValue = FixedValue.Remove(embedded)

	if _, ok := entity.Classification(omrs.ClassificationPrimaryKey); ok {
		pk := ClassificationProperties(entity, omrs.ClassificationPrimaryKey)
		bean.PrimaryKey = &elements.PrimaryKey{
			Name:       Name.Remove(pk),
			KeyPattern: KeyPattern.Remove(pk),
		}
	}

	if st, ok := schemaType.(*elements.DatabaseColumnTypeElement); ok && st != nil {
		bean.SchemaType = st
	}

	for _, rel := range relationships {
		if rel == nil || rel.Type.Name != omrs.RelationshipForeignKey {
			continue
		}
		fk, err := c.NewForeignKeyBean(factory, rel, operation)
		if err != nil {
			return nil, err
		}
		bean.ForeignKeys = append(bean.ForeignKeys, fk)
	}

	// Any remaining properties are returned in the extended properties.
	// They are assumed to be defined in a subtype.
	c.finish(bean.Base(), header, props, shape)
	c.metrics.observe(shape, OutcomeOK)
	return bean, nil
}

// NewDatabaseColumnTypeBean projects a schema type entity into a
// DatabaseColumnTypeElement.
func (c *Converter) NewDatabaseColumnTypeBean(factory elements.Factory,
	entity *instance.Record,
	operation string) (*elements.DatabaseColumnTypeElement, error) {
	const shape = elements.ShapeDatabaseColumnType

	bean, err := construct[*elements.DatabaseColumnTypeElement](c, factory, shape, operation)
	if err != nil {
		return nil, err
	}

	if entity == nil {
		return bean, c.missing(shape, instance.CategoryEntity, operation)
	}

	header, err := ProjectHeader(entity, shape, operation)
	if err != nil {
		return nil, c.failHeader(err)
	}

	props := entity.Properties.Clone()

	bean.QualifiedName = QualifiedName.Remove(props)
	bean.AdditionalProperties = AdditionalProperties.Remove(props)
	bean.DisplayName = DisplayName.Remove(props)
	bean.Description = Description.Remove(props)
	bean.VersionNumber = VersionNumber.Remove(props)
	bean.Author = Author.Remove(props)
	bean.Usage = Usage.Remove(props)
	bean.EncodingStandard = EncodingStandard.Remove(props)
	bean.Namespace = SchemaNamespace.Remove(props)
	bean.DataType = DataType.Remove(props)
	bean.DefaultValue = DefaultValue.Remove(props)
	bean.FixedValue = FixedValue.Remove(props)

	c.finish(bean.Base(), header, props, shape)
	c.metrics.observe(shape, OutcomeOK)
	return bean, nil
}
