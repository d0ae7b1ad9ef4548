package instance

import (
	"fmt"
	"time"
)

// Category distinguishes entity records from relationship records.
type Category string

const (
	CategoryEntity       Category = "entity"
	CategoryRelationship Category = "relationship"
)

// Status is the lifecycle status of a record.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDraft    Status = "DRAFT"
	StatusProposed Status = "PROPOSED"
	StatusDeleted  Status = "DELETED"
)

// Provenance describes where a record's home copy lives.
type Provenance string

const (
	ProvenanceLocalCohort   Provenance = "LOCAL_COHORT"
	ProvenanceExportArchive Provenance = "EXPORT_ARCHIVE"
	ProvenanceContentPack   Provenance = "CONTENT_PACK"
	ProvenanceDeregistered  Provenance = "DEREGISTERED_REPOSITORY"
	ProvenanceExternal      Provenance = "EXTERNAL_SOURCE"
)

// TypeDescriptor names the registered type of a record.
type TypeDescriptor struct {
	TypeDefGUID string   `json:"type_def_guid,omitempty" yaml:"guid,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Version     int64    `json:"version,omitempty" yaml:"version,omitempty"`
	Category    Category `json:"category" yaml:"category"`
	SuperTypes  []string `json:"super_types,omitempty" yaml:"superTypes,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// SystemInfo holds the creation and update metadata maintained by the
// repository.
type SystemInfo struct {
	CreatedBy              string     `json:"created_by,omitempty" yaml:"createdBy,omitempty"`
	UpdatedBy              string     `json:"updated_by,omitempty" yaml:"updatedBy,omitempty"`
	CreateTime             time.Time  `json:"create_time,omitempty" yaml:"createTime,omitempty"`
	UpdateTime             time.Time  `json:"update_time,omitempty" yaml:"updateTime,omitempty"`
	Version                int64      `json:"version,omitempty" yaml:"version,omitempty"`
	Status                 Status     `json:"status,omitempty" yaml:"status,omitempty"`
	MetadataCollectionID   string     `json:"metadata_collection_id,omitempty" yaml:"metadataCollectionId,omitempty"`
	MetadataCollectionName string     `json:"metadata_collection_name,omitempty" yaml:"metadataCollectionName,omitempty"`
	InstanceProvenance     Provenance `json:"instance_provenance,omitempty" yaml:"instanceProvenance,omitempty"`
}

// Classification is a named annotation on a record with its own bag.
type Classification struct {
	Name       string      `json:"name"`
	Properties *Properties `json:"properties,omitempty"`
	Origin     Provenance  `json:"origin,omitempty"`
	CreatedBy  string      `json:"created_by,omitempty"`
	CreateTime time.Time   `json:"create_time,omitempty"`
}

// Proxy identifies one end of a relationship.
type Proxy struct {
	GUID     string `json:"guid" yaml:"guid"`
	TypeName string `json:"type_name,omitempty" yaml:"typeName,omitempty"`
}

// Record is an entity or relationship as returned by a repository. Records
// are owned by the repository; consumers must treat them as read-only
// snapshots.
type Record struct {
	GUID            string           `json:"guid"`
	Type            TypeDescriptor   `json:"type"`
	Properties      *Properties      `json:"properties,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	System          SystemInfo       `json:"system"`

	// End1 and End2 are set on relationships only.
	End1 *Proxy `json:"end1,omitempty"`
	End2 *Proxy `json:"end2,omitempty"`
}

// NewEntity creates an entity record of the given type.
func NewEntity(guid, typeName string, props *Properties) *Record {
	return &Record{
		GUID:       guid,
		Type:       TypeDescriptor{Name: typeName, Category: CategoryEntity},
		Properties: props,
		System:     SystemInfo{Status: StatusActive},
	}
}

// NewRelationship creates a relationship record between two entities.
func NewRelationship(guid, typeName string, end1, end2 Proxy, props *Properties) *Record {
	return &Record{
		GUID:       guid,
		Type:       TypeDescriptor{Name: typeName, Category: CategoryRelationship},
		Properties: props,
		System:     SystemInfo{Status: StatusActive},
		End1:       &end1,
		End2:       &end2,
	}
}

// IsRelationship reports whether the record is a relationship.
func (r *Record) IsRelationship() bool {
	return r != nil && r.Type.Category == CategoryRelationship
}

// Classification returns the named classification.
func (r *Record) Classification(name string) (Classification, bool) {
	if r == nil {
		return Classification{}, false
	}
	for _, c := range r.Classifications {
		if c.Name == name {
			return c, true
		}
	}
	return Classification{}, false
}

// ClassificationNames returns the names of all classifications in order.
func (r *Record) ClassificationNames() []string {
	if r == nil || len(r.Classifications) == 0 {
		return nil
	}
	names := make([]string, len(r.Classifications))
	for i, c := range r.Classifications {
		names[i] = c.Name
	}
	return names
}

// OtherEnd returns the GUID at the opposite end of a relationship from guid.
func (r *Record) OtherEnd(guid string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil relationship")
	}
	if !r.IsRelationship() || r.End1 == nil || r.End2 == nil {
		return "", fmt.Errorf("record %s is not a relationship", r.GUID)
	}
	switch guid {
	case r.End1.GUID:
		return r.End2.GUID, nil
	case r.End2.GUID:
		return r.End1.GUID, nil
	default:
		return "", fmt.Errorf("relationship %s does not link %s", r.GUID, guid)
	}
}

// Links reports whether the relationship has guid at either end.
func (r *Record) Links(guid string) bool {
	if !r.IsRelationship() {
		return false
	}
	return (r.End1 != nil && r.End1.GUID == guid) || (r.End2 != nil && r.End2.GUID == guid)
}
