// Package convert projects attributed-graph records into strongly-typed
// element beans.
//
// A projection copies the record's property bag, lets a fixed sequence of
// typed extractors remove the properties they understand, and harvests
// whatever is left as the bean's extended properties. Every property
// therefore ends up in exactly one place: a named bean field or the
// extended properties. Sub-types registered after this package was built
// simply contribute more extended properties.
//
// Structural problems are classified as *ProjectionError values and also
// delivered to the converter's Reporter.
package convert

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
)

// Converter projects records into beans. It holds no per-call state and is
// safe for concurrent use.
type Converter struct {
	reporter Reporter
	metrics  *Metrics
	logger   *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithReporter sets the failure reporter.
func WithReporter(r Reporter) ConverterOption {
	return func(c *Converter) {
		c.reporter = r
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) ConverterOption {
	return func(c *Converter) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a Converter. Without options failures are only
// returned, not reported.
func NewConverter(opts ...ConverterOption) *Converter {
	c := &Converter{
		reporter: Discard,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = Discard
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// construct obtains an empty bean from the factory and checks that it is
// the concrete type the shape dispatches to.
func construct[B elements.Bean](c *Converter, factory elements.Factory, shape elements.Shape, operation string) (B, error) {
	var zero B
	if factory == nil {
		factory = elements.NewBean
	}

	b, err := factory(shape)
	if err == nil && b == nil {
		err = errors.New("factory returned no bean")
	}
	if err != nil {
		return zero, c.fail(&ProjectionError{
			Kind:      KindBeanConstruction,
			Shape:     shape,
			Operation: operation,
			Err:       err,
		})
	}

	typed, ok := b.(B)
	if ok && any(typed) == any(zero) {
		return zero, c.fail(&ProjectionError{
			Kind:      KindBeanConstruction,
			Shape:     shape,
			Operation: operation,
			Err:       errors.New("factory returned a nil bean"),
		})
	}
	if !ok || b.Shape() != shape {
		return zero, c.fail(&ProjectionError{
			Kind:      KindInvalidBeanClass,
			Shape:     shape,
			Operation: operation,
			Err:       fmt.Errorf("factory returned %T with shape %s", b, b.Shape()),
		})
	}
	return typed, nil
}

// missing reports an absent mandatory record and returns the error the
// caller hands back alongside its partial bean.
func (c *Converter) missing(shape elements.Shape, want instance.Category, operation string) error {
	c.metrics.observe(shape, OutcomePartial)
	return c.fail(&ProjectionError{
		Kind:      KindMissingMandatoryInstance,
		Shape:     shape,
		Expected:  want,
		Operation: operation,
	})
}

// fail reports a projection error and returns it.
func (c *Converter) fail(pe *ProjectionError) error {
	c.metrics.observeFailure(pe.Shape, pe.Kind)
	if pe.Kind != KindMissingMandatoryInstance {
		c.metrics.observe(pe.Shape, OutcomeFailed)
	}
	c.reporter.Report(NewReport(pe))
	return pe
}

// failHeader reports a header projection error. Errors that are not
// projection errors are returned unchanged.
func (c *Converter) failHeader(err error) error {
	var pe *ProjectionError
	if errors.As(err, &pe) {
		return c.fail(pe)
	}
	return err
}

// finish sets the header and type name and harvests the remaining
// properties. It must run after every extractor bound to the shape.
func (c *Converter) finish(base *elements.Element, header elements.ElementHeader, props *instance.Properties, shape elements.Shape) {
	base.ElementHeader = header
	base.TypeName = header.Type.TypeName
	base.ExtendedProperties = props.Remainder()

	c.metrics.observeExtended(shape, props.Len())
	if props.Len() > 0 {
		c.logger.Debug("Harvested extended properties",
			slog.String("guid", header.GUID),
			slog.String("type", header.Type.TypeName),
			slog.Int("count", props.Len()))
	}
}

// ClaimedProperties returns the names of the primary-bag properties the
// shape's extractor sequence claims. Every other property of the primary
// record ends up in the bean's extended properties, as does an integer
// property whose value does not fit an int.
func ClaimedProperties(shape elements.Shape) []string {
	var seq []Extractor
	switch shape {
	case elements.ShapeDatabaseColumnType:
		seq = columnTypeSequence
	case elements.ShapeDatabaseColumn:
		seq = columnSequence
	case elements.ShapeReferenceValueAssignmentItem:
		seq = referenceableSequence
	case elements.ShapeForeignKey:
		seq = foreignKeySequence
	}
	names := make([]string, len(seq))
	for i, e := range seq {
		names[i] = e.PropertyName()
	}
	return names
}

var referenceableSequence = []Extractor{
	QualifiedName,
	AdditionalProperties,
}
