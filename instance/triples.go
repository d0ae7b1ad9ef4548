package instance

import (
	"strings"
	"time"

	"github.com/c360studio/semconv/vocabulary/omrs"
	"github.com/c360studio/semstreams/message"
)

// ClassificationPredicatePrefix prefixes predicates that carry a
// classification-scoped property: omrs.classification.<Name>.<property>.
const ClassificationPredicatePrefix = "omrs.classification."

// ClassificationPredicate returns the predicate for a classification property.
func ClassificationPredicate(classification, property string) string {
	return ClassificationPredicatePrefix + classification + "." + property
}

// FromTriples folds the graph triples about one subject into a record of the
// given type. Triples about other subjects are ignored. Repeated predicates
// accumulate into an array value, and values are coerced to the data type
// registered for the property where the triple carries a looser form.
func FromTriples(guid string, typ TypeDescriptor, triples []message.Triple) *Record {
	rec := &Record{
		GUID:       guid,
		Type:       typ,
		Properties: NewProperties(),
		System:     SystemInfo{Status: StatusActive},
	}

	classifications := make(map[string]*Properties)
	var classOrder []string
	var latest time.Time

	for _, t := range triples {
		if t.Subject != guid {
			continue
		}
		if t.Timestamp.After(latest) {
			latest = t.Timestamp
		}

		bag := rec.Properties
		name := omrs.PropertyName(t.Predicate)
		if rest, ok := strings.CutPrefix(t.Predicate, ClassificationPredicatePrefix); ok {
			className, prop, found := strings.Cut(rest, ".")
			if !found {
				continue
			}
			if _, seen := classifications[className]; !seen {
				classifications[className] = NewProperties()
				classOrder = append(classOrder, className)
			}
			bag, name = classifications[className], prop
		}

		v := coerce(name, FromAny(t.Object))
		if existing, ok := bag.Get(name); ok {
			v = appendValue(existing, v)
		}
		bag.Set(name, v)
	}

	for _, name := range classOrder {
		rec.Classifications = append(rec.Classifications, Classification{
			Name:       name,
			Properties: classifications[name],
		})
	}
	if !latest.IsZero() {
		rec.System.UpdateTime = latest
	}
	return rec
}

// ToTriples renders the record's properties and classification properties as
// graph triples attributed to source.
func ToTriples(r *Record, source string, ts time.Time) []message.Triple {
	var triples []message.Triple
	emit := func(predicate string, v Value) {
		triples = append(triples, message.Triple{
			Subject:    r.GUID,
			Predicate:  predicate,
			Object:     v.Interface(),
			Source:     source,
			Timestamp:  ts,
			Confidence: 1.0,
		})
	}

	r.Properties.Range(func(key string, v Value) bool {
		emit(omrs.Predicate(key), v)
		return true
	})
	for _, c := range r.Classifications {
		c.Properties.Range(func(key string, v Value) bool {
			emit(ClassificationPredicate(c.Name, key), v)
			return true
		})
	}
	return triples
}

func appendValue(existing, v Value) Value {
	var items []Value
	if existing.Kind() == KindArray {
		items = append(items, existing.Items()...)
	} else {
		items = append(items, existing)
	}
	if v.Kind() == KindArray {
		items = append(items, v.Items()...)
	} else {
		items = append(items, v)
	}
	return Array(items...)
}

// coerce aligns a triple object with the registered data type of the
// property. Unregistered properties keep the inferred kind.
func coerce(name string, v Value) Value {
	switch omrs.DataTypeOf(name) {
	case "int":
		if v.Kind() == KindFloat {
			return Int(int64(v.FloatValue()))
		}
	case "enum":
		if v.Kind() == KindString {
			return Enum(v.Str(), 0)
		}
	case "array":
		if v.Kind() != KindArray && !v.IsZero() {
			return Array(v)
		}
	}
	return v
}
