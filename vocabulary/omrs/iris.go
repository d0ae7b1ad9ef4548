package omrs

// Namespace is the base IRI prefix for open metadata property terms.
const Namespace = "https://semconv.dev/ontology/omrs/"

// PredicatePrefix prefixes every registered property predicate.
const PredicatePrefix = "omrs.property."

// Standard ontology IRI constants for mappings.
const (
	// DcTitle is the Dublin Core title property.
	DcTitle = "http://purl.org/dc/terms/title"

	// DcDescription is the Dublin Core description property.
	DcDescription = "http://purl.org/dc/terms/description"

	// DcCreator is the Dublin Core creator property.
	DcCreator = "http://purl.org/dc/terms/creator"

	// SkosNotation is the SKOS notation property, used for qualified names.
	SkosNotation = "http://www.w3.org/2004/02/skos/core#notation"
)
