// Package omrs provides the canonical property vocabulary for open metadata
// repository records.
//
// Every property that a typed extractor claims from an attribute bag is named
// here exactly once. Each property is also registered with the semstreams
// vocabulary registry as a three-level predicate (omrs.property.<name>) so
// records that arrive as graph triples can be folded back into bags, and so
// the registered data type can drive value coercion at ingestion time.
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/semconv/vocabulary/omrs"
//
// # Type names
//
// The package also names the entity, relationship and classification types
// that the shipped bean shapes consume. Sub-types registered later by a
// repository do not need an entry here: their extra properties surface as
// extended properties on the projected bean.
package omrs
