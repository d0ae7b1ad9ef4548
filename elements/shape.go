package elements

import (
	"errors"
	"fmt"

	"github.com/c360studio/semconv/instance"
)

// Shape tags a bean structure known at compile time. The set is closed:
// converters dispatch on it before touching any record.
type Shape string

const (
	ShapeDatabaseColumnType           Shape = "database-column-type"
	ShapeDatabaseColumn               Shape = "database-column"
	ShapeReferenceValueAssignmentItem Shape = "reference-value-assignment-item"
	ShapeForeignKey                   Shape = "foreign-key"
)

type shapeInfo struct {
	beanName string
	category instance.Category
	newBean  func() Bean
}

var shapes = map[Shape]shapeInfo{
	ShapeDatabaseColumnType: {
		beanName: "DatabaseColumnTypeElement",
		category: instance.CategoryEntity,
		newBean:  func() Bean { return &DatabaseColumnTypeElement{} },
	},
	ShapeDatabaseColumn: {
		beanName: "DatabaseColumnElement",
		category: instance.CategoryEntity,
		newBean:  func() Bean { return &DatabaseColumnElement{} },
	},
	ShapeReferenceValueAssignmentItem: {
		beanName: "ReferenceValueAssignmentItemElement",
		category: instance.CategoryEntity,
		newBean:  func() Bean { return &ReferenceValueAssignmentItemElement{} },
	},
	ShapeForeignKey: {
		beanName: "ForeignKeyElement",
		category: instance.CategoryRelationship,
		newBean:  func() Bean { return &ForeignKeyElement{} },
	},
}

// ErrUnknownShape is returned for a shape outside the closed set.
var ErrUnknownShape = errors.New("unknown bean shape")

// Category returns the record category the shape's primary record must have.
func (s Shape) Category() instance.Category {
	return shapes[s].category
}

// BeanName returns the name of the bean structure for the shape.
func (s Shape) BeanName() string {
	if info, ok := shapes[s]; ok {
		return info.beanName
	}
	return string(s)
}

// Valid reports whether the shape is part of the closed set.
func (s Shape) Valid() bool {
	_, ok := shapes[s]
	return ok
}

// ParseShape converts a shape name into a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownShape, name)
	}
	return s, nil
}

// Shapes returns every shape in a stable order.
func Shapes() []Shape {
	return []Shape{
		ShapeDatabaseColumnType,
		ShapeDatabaseColumn,
		ShapeReferenceValueAssignmentItem,
		ShapeForeignKey,
	}
}

// Factory constructs an empty bean for a shape. Domain modules supply their
// own factory when they need to pre-populate or pool beans.
type Factory func(Shape) (Bean, error)

// NewBean is the default Factory.
func NewBean(s Shape) (Bean, error) {
	info, ok := shapes[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShape, s)
	}
	return info.newBean(), nil
}
