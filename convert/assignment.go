package convert

import (
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
)

var assignmentRelationshipSequence = []Extractor{
	Confidence,
	Steward,
	StewardTypeName,
	StewardPropertyName,
	Notes,
}

// NewReferenceValueAssignmentItemBean projects an assigned item together
// with the ReferenceValueAssignment relationship that links it to a valid
// value.
//
// The entity supplies the header, the referenceable properties and the
// extended properties of the assigned item. The relationship supplies the
// confidence, steward and notes; its unclaimed properties are kept in
// RelationshipProperties.
//
// A nil relationship still yields the populated entity part, together with a
// recoverable MissingMandatoryInstance error.
func (c *Converter) NewReferenceValueAssignmentItemBean(factory elements.Factory,
	entity *instance.Record,
	relationship *instance.Record,
	operation string) (*elements.ReferenceValueAssignmentItemElement, error) {
	const shape = elements.ShapeReferenceValueAssignmentItem

	bean, err := construct[*elements.ReferenceValueAssignmentItemElement](c, factory, shape, operation)
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

	bean.AssignedItem.QualifiedName = QualifiedName.Remove(props)
	bean.AssignedItem.AdditionalProperties = AdditionalProperties.Remove(props)

	c.finish(bean.Base(), header, props, shape)

	if relationship == nil {
		return bean, c.missing(shape, instance.CategoryRelationship, operation)
	}

	relHeader, err := projectHeader(relationship, instance.CategoryRelationship, shape, operation)
	if err != nil {
		return nil, c.failHeader(err)
	}

	relProps := relationship.Properties.Clone()

	bean.Confidence = Confidence.Remove(relProps)
	bean.Steward = Steward.Remove(relProps)
	bean.StewardTypeName = StewardTypeName.Remove(relProps)
	bean.StewardPropertyName = StewardPropertyName.Remove(relProps)
	bean.Notes = Notes.Remove(relProps)

	bean.RelationshipHeader = &relHeader
	bean.RelationshipProperties = relProps.Remainder()

	c.metrics.observe(shape, OutcomeOK)
	return bean, nil
}

// RelationshipClaimedProperties returns the names of the relationship
// properties claimed by shapes that combine an entity with a relationship.
// Shapes without a relationship part return nil.
func RelationshipClaimedProperties(shape elements.Shape) []string {
	if shape != elements.ShapeReferenceValueAssignmentItem {
		return nil
	}
	names := make([]string, len(assignmentRelationshipSequence))
	for i, e := range assignmentRelationshipSequence {
		names[i] = e.PropertyName()
	}
	return names
}
