// Package catalog retrieves metadata records from a repository and projects
// them into element beans.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/semconv/convert"
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semconv/repository"
	"github.com/c360studio/semconv/vocabulary/omrs"
)

// Service answers element queries against a repository.
type Service struct {
	repo      repository.Repository
	converter *convert.Converter
	factory   elements.Factory
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFactory sets the bean factory handed to every projection.
func WithFactory(f elements.Factory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service. A nil converter uses convert.NewConverter().
func NewService(repo repository.Repository, converter *convert.Converter, opts ...Option) *Service {
	if converter == nil {
		converter = convert.NewConverter()
	}
	s := &Service{
		repo:      repo,
		converter: converter,
		factory:   elements.NewBean,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// DatabaseColumnType returns the schema type with the given GUID.
func (s *Service) DatabaseColumnType(ctx context.Context, guid string) (*elements.DatabaseColumnTypeElement, error) {
	entity, err := s.fetchEntity(ctx, guid)
	if err != nil {
		return nil, err
	}
	return s.converter.NewDatabaseColumnTypeBean(s.factory, entity, "DatabaseColumnType")
}

// DatabaseColumn returns the column with the given GUID together with its
// schema type and foreign keys. A schema type that cannot be found is
// logged and left out.
func (s *Service) DatabaseColumn(ctx context.Context, guid string) (*elements.DatabaseColumnElement, error) {
	const operation = "DatabaseColumn"

	entity, err := s.fetchEntity(ctx, guid)
	if err != nil {
		return nil, err
	}

	schemaType, err := s.schemaType(ctx, guid, operation)
	if err != nil {
		return nil, err
	}

	foreignKeys, err := s.repo.FetchRelationships(ctx, guid, omrs.RelationshipForeignKey)
	if err != nil {
		return nil, fmt.Errorf("fetch foreign keys of %s: %w", guid, err)
	}

	var companion elements.Bean
	if schemaType != nil {
		companion = schemaType
	}
	return s.converter.NewDatabaseColumnBean(s.factory, entity, companion, foreignKeys, operation)
}

// schemaType resolves the schema type linked to an attribute, or nil.
func (s *Service) schemaType(ctx context.Context, attributeGUID, operation string) (*elements.DatabaseColumnTypeElement, error) {
	rels, err := s.repo.FetchRelationships(ctx, attributeGUID, omrs.RelationshipSchemaAttributeType)
	if err != nil {
		return nil, fmt.Errorf("fetch schema type link of %s: %w", attributeGUID, err)
	}
	if len(rels) == 0 {
		return nil, nil
	}
	if len(rels) > 1 {
		s.logger.Warn("Attribute has more than one schema type, using the first",
			"guid", attributeGUID,
			"count", len(rels))
	}

	typeGUID, err := rels[0].OtherEnd(attributeGUID)
	if err != nil {
		return nil, fmt.Errorf("resolve schema type of %s: %w", attributeGUID, err)
	}

	entity, err := s.repo.FetchEntity(ctx, typeGUID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Schema type not found",
			"attribute", attributeGUID,
			"schema_type", typeGUID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch schema type %s: %w", typeGUID, err)
	}

	return s.converter.NewDatabaseColumnTypeBean(s.factory, entity, operation)
}

// ReferenceValueAssignments returns the items a valid value is assigned to.
// Assignments whose item cannot be found are logged and skipped.
func (s *Service) ReferenceValueAssignments(ctx context.Context, validValueGUID string) ([]*elements.ReferenceValueAssignmentItemElement, error) {
	const operation = "ReferenceValueAssignments"

	if _, err := s.fetchEntity(ctx, validValueGUID); err != nil {
		return nil, err
	}

	rels, err := s.repo.FetchRelationships(ctx, validValueGUID, omrs.RelationshipReferenceValueAssignment)
	if err != nil {
		return nil, fmt.Errorf("fetch assignments of %s: %w", validValueGUID, err)
	}

	items := make([]*elements.ReferenceValueAssignmentItemElement, 0, len(rels))
	for _, rel := range rels {
		itemGUID, err := rel.OtherEnd(validValueGUID)
		if err != nil {
			return nil, fmt.Errorf("resolve assigned item: %w", err)
		}

		entity, err := s.repo.FetchEntity(ctx, itemGUID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Assigned item not found",
				"relationship", rel.GUID,
				"item", itemGUID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch assigned item %s: %w", itemGUID, err)
		}

		item, err := s.converter.NewReferenceValueAssignmentItemBean(s.factory, entity, rel, operation)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	s.logger.Debug("Projected reference value assignments",
		"valid_value", validValueGUID,
		"count", len(items))
	return items, nil
}

// AssignedItem returns an element together with its first reference value
// assignment. An element without one comes back with a recoverable
// MissingMandatoryInstance error alongside the populated item.
func (s *Service) AssignedItem(ctx context.Context, itemGUID string) (*elements.ReferenceValueAssignmentItemElement, error) {
	entity, err := s.fetchEntity(ctx, itemGUID)
	if err != nil {
		return nil, err
	}

	rels, err := s.repo.FetchRelationships(ctx, itemGUID, omrs.RelationshipReferenceValueAssignment)
	if err != nil {
		return nil, fmt.Errorf("fetch assignments of %s: %w", itemGUID, err)
	}

	var rel *instance.Record
	if len(rels) > 0 {
		rel = rels[0]
	}
	return s.converter.NewReferenceValueAssignmentItemBean(s.factory, entity, rel, "AssignedItem")
}

// ForeignKeys returns the foreign keys a column takes part in.
func (s *Service) ForeignKeys(ctx context.Context, columnGUID string) ([]*elements.ForeignKeyElement, error) {
	if _, err := s.fetchEntity(ctx, columnGUID); err != nil {
		return nil, err
	}

	rels, err := s.repo.FetchRelationships(ctx, columnGUID, omrs.RelationshipForeignKey)
	if err != nil {
		return nil, fmt.Errorf("fetch foreign keys of %s: %w", columnGUID, err)
	}

	keys := make([]*elements.ForeignKeyElement, 0, len(rels))
	for _, rel := range rels {
		fk, err := s.converter.NewForeignKeyBean(s.factory, rel, "ForeignKeys")
		if err != nil {
			return nil, err
		}
		keys = append(keys, fk)
	}
	return keys, nil
}

// Project answers the query for shape rooted at the entity guid. Shapes that
// yield several beans return a slice:
//
//   - database-column-type: the schema type guid
//   - database-column: the column guid
//   - reference-value-assignment-item: the assigned item guid
//   - foreign-key: the column guid; returns every foreign key of the column
func (s *Service) Project(ctx context.Context, shape elements.Shape, guid string) (any, error) {
	switch shape {
	case elements.ShapeDatabaseColumnType:
		return s.DatabaseColumnType(ctx, guid)
	case elements.ShapeDatabaseColumn:
		return s.DatabaseColumn(ctx, guid)
	case elements.ShapeReferenceValueAssignmentItem:
		return s.AssignedItem(ctx, guid)
	case elements.ShapeForeignKey:
		return s.ForeignKeys(ctx, guid)
	default:
		return nil, fmt.Errorf("%w: %s", elements.ErrUnknownShape, shape)
	}
}

func (s *Service) fetchEntity(ctx context.Context, guid string) (*instance.Record, error) {
	entity, err := s.repo.FetchEntity(ctx, guid)
	if err != nil {
		return nil, fmt.Errorf("fetch entity %s: %w", guid, err)
	}
	return entity, nil
}
