package convert

import (
	"errors"
	"fmt"

	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
)

// Kind classifies a projection failure.
type Kind string

const (
	// KindTypeMismatch: the record's category does not match the shape.
	KindTypeMismatch Kind = "TypeMismatch"

	// KindMissingMandatoryInstance: a required record was not supplied.
	KindMissingMandatoryInstance Kind = "MissingMandatoryInstance"

	// KindBeanConstruction: the factory could not construct a bean.
	KindBeanConstruction Kind = "BeanConstructionError"

	// KindInvalidBeanClass: the factory returned a bean of the wrong shape.
	KindInvalidBeanClass Kind = "InvalidBeanClass"
)

// Sentinel errors matched with errors.Is against a *ProjectionError.
var (
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrMissingInstance  = errors.New("missing mandatory instance")
	ErrBeanConstruction = errors.New("bean construction failed")
	ErrInvalidBeanClass = errors.New("invalid bean class")
)

var sentinels = map[Kind]error{
	KindTypeMismatch:             ErrTypeMismatch,
	KindMissingMandatoryInstance: ErrMissingInstance,
	KindBeanConstruction:         ErrBeanConstruction,
	KindInvalidBeanClass:         ErrInvalidBeanClass,
}

// ProjectionError describes a structural problem found while projecting a
// record into a bean.
type ProjectionError struct {
	Kind  Kind
	Shape elements.Shape

	// DeclaredType is the type name of the offending record, empty when the
	// record was absent.
	DeclaredType string

	// Expected is the record category the projection needed.
	Expected instance.Category

	// Operation names the calling operation.
	Operation string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ProjectionError) Error() string {
	msg := fmt.Sprintf("%s: %s for %s", e.Operation, sentinels[e.Kind], e.Shape.BeanName())
	switch e.Kind {
	case KindTypeMismatch:
		msg += fmt.Sprintf(": %s expected, got %s", e.Expected, e.DeclaredType)
	case KindMissingMandatoryInstance:
		msg += fmt.Sprintf(": %s expected", e.Expected)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the kind's sentinel error and the underlying cause.
func (e *ProjectionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ExpectedDescription renders the expected category the way failure
// reports phrase it, e.g. "entity expected".
func (e *ProjectionError) ExpectedDescription() string {
	if e.Expected == "" {
		return ""
	}
	return string(e.Expected) + " expected"
}

// IsRecoverable reports whether err leaves a usable partial bean behind.
// Only a missing mandatory instance is recoverable; type mismatches and
// factory defects are not.
func IsRecoverable(err error) bool {
	var pe *ProjectionError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == KindMissingMandatoryInstance
}
