package convert

import (
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
)

var foreignKeySequence = []Extractor{
	Name,
	Description,
	Confidence,
	Steward,
	Source,
}

// NewForeignKeyBean projects a ForeignKey relationship between two columns.
// A nil relationship yields the empty bean together with a recoverable
// MissingMandatoryInstance error.
func (c *Converter) NewForeignKeyBean(factory elements.Factory,
	relationship *instance.Record,
	operation string) (*elements.ForeignKeyElement, error) {
	const shape = elements.ShapeForeignKey

	bean, err := construct[*elements.ForeignKeyElement](c, factory, shape, operation)
	if err != nil {
		return nil, err
	}

	if relationship == nil {
		return bean, c.missing(shape, instance.CategoryRelationship, operation)
	}

	header, err := ProjectHeader(relationship, shape, operation)
	if err != nil {
		return nil, c.failHeader(err)
	}

	if relationship.End1 != nil {
		bean.End1GUID = relationship.End1.GUID
	}
	if relationship.End2 != nil {
		bean.End2GUID = relationship.End2.GUID
	}

	props := relationship.Properties.Clone()

	bean.Name = Name.Remove(props)
	bean.Description = Description.Remove(props)
	bean.Confidence = Confidence.Remove(props)
	bean.Steward = Steward.Remove(props)
	bean.Source = Source.Remove(props)

	c.finish(bean.Base(), header, props, shape)
	c.metrics.observe(shape, OutcomeOK)
	return bean, nil
}
