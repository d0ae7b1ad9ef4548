// Package elements defines the strongly-typed beans that attributed-graph
// records are projected into, together with the element header common to
// every bean.
package elements

import (
	"time"

	"github.com/c360studio/semconv/instance"
)

// ElementType describes the registered type of a projected element.
type ElementType struct {
	TypeID         string            `json:"type_id,omitempty"`
	TypeName       string            `json:"type_name"`
	SuperTypeNames []string          `json:"super_type_names,omitempty"`
	TypeVersion    int64             `json:"type_version,omitempty"`
	Category       instance.Category `json:"category"`
	Description    string            `json:"description,omitempty"`
}

// ElementOrigin records which repository owns the home copy of an element.
type ElementOrigin struct {
	HomeMetadataCollectionID   string              `json:"home_metadata_collection_id,omitempty"`
	HomeMetadataCollectionName string              `json:"home_metadata_collection_name,omitempty"`
	OriginCategory             instance.Provenance `json:"origin_category,omitempty"`
}

// ElementVersions holds creation and update provenance.
type ElementVersions struct {
	CreatedBy  string    `json:"created_by,omitempty"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
	CreateTime time.Time `json:"create_time,omitempty"`
	UpdateTime time.Time `json:"update_time,omitempty"`
	Version    int64     `json:"version,omitempty"`
}

// ElementClassification summarises one classification on an element. The
// properties are a snapshot; extractors never consume them.
type ElementClassification struct {
	ClassificationName string              `json:"classification_name"`
	Origin             instance.Provenance `json:"origin,omitempty"`
	Properties         map[string]any      `json:"properties,omitempty"`
}

// ElementHeader is the identity and provenance summary of a projected
// element. It is built once per projection and not modified afterwards.
type ElementHeader struct {
	GUID            string                  `json:"guid"`
	Type            ElementType             `json:"type"`
	Origin          ElementOrigin           `json:"origin"`
	Versions        ElementVersions         `json:"versions"`
	Status          instance.Status         `json:"status,omitempty"`
	Classifications []ElementClassification `json:"classifications,omitempty"`
}

// ClassificationNames returns the names of the header's classifications.
func (h ElementHeader) ClassificationNames() []string {
	if len(h.Classifications) == 0 {
		return nil
	}
	names := make([]string, len(h.Classifications))
	for i, c := range h.Classifications {
		names[i] = c.ClassificationName
	}
	return names
}
