package convert

import (
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
)

// ClassificationProperties returns a private copy of the bag attached to the
// named classification. A record without that classification yields an
// empty bag: classifications are optional annotations.
func ClassificationProperties(r *instance.Record, name string) *instance.Properties {
	c, ok := r.Classification(name)
	if !ok {
		return instance.NewProperties()
	}
	return c.Properties.Clone()
}

// ProjectHeader builds the element header for a record that is about to be
// projected into shape. It fails with a TypeMismatch before any property is
// read when the record's category is not the one the shape expects.
func ProjectHeader(r *instance.Record, shape elements.Shape, operation string) (elements.ElementHeader, error) {
	return projectHeader(r, shape.Category(), shape, operation)
}

func projectHeader(r *instance.Record, want instance.Category, shape elements.Shape, operation string) (elements.ElementHeader, error) {
	if r == nil {
		return elements.ElementHeader{}, &ProjectionError{
			Kind:      KindMissingMandatoryInstance,
			Shape:     shape,
			Expected:  want,
			Operation: operation,
		}
	}
	if r.Type.Category != want {
		return elements.ElementHeader{}, &ProjectionError{
			Kind:         KindTypeMismatch,
			Shape:        shape,
			DeclaredType: declaredType(r),
			Expected:     want,
			Operation:    operation,
		}
	}

	h := elements.ElementHeader{
		GUID: r.GUID,
		Type: elements.ElementType{
			TypeID:      r.Type.TypeDefGUID,
			TypeName:    r.Type.Name,
			TypeVersion: r.Type.Version,
			Category:    r.Type.Category,
			Description: r.Type.Description,
		},
		Origin: elements.ElementOrigin{
			HomeMetadataCollectionID:   r.System.MetadataCollectionID,
			HomeMetadataCollectionName: r.System.MetadataCollectionName,
			OriginCategory:             r.System.InstanceProvenance,
		},
		Versions: elements.ElementVersions{
			CreatedBy:  r.System.CreatedBy,
			UpdatedBy:  r.System.UpdatedBy,
			CreateTime: r.System.CreateTime,
			UpdateTime: r.System.UpdateTime,
			Version:    r.System.Version,
		},
		Status: r.System.Status,
	}
	if len(r.Type.SuperTypes) > 0 {
		h.Type.SuperTypeNames = append([]string(nil), r.Type.SuperTypes...)
	}
	for _, c := range r.Classifications {
		h.Classifications = append(h.Classifications, elements.ElementClassification{
			ClassificationName: c.Name,
			Origin:             c.Origin,
			Properties:         c.Properties.Remainder(),
		})
	}
	return h, nil
}

func declaredType(r *instance.Record) string {
	if r == nil {
		return ""
	}
	if r.Type.Category == "" {
		return r.Type.Name
	}
	return r.Type.Name + " (" + string(r.Type.Category) + ")"
}
