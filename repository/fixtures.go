package repository

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semconv/instance"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// fixtureFile is the on-disk layout of a record fixture:
//
//	entities:
//	  - guid: col-1
//	    type: {name: RelationalColumn, superTypes: [TabularColumn]}
//	    properties: {qualifiedName: db.orders.id, position: 1}
//	    classifications:
//	      - name: TypeEmbeddedAttribute
//	        properties: {dataType: INTEGER}
//	relationships:
//	  - guid: fk-1
//	    type: {name: ForeignKey}
//	    end1: {guid: col-0}
//	    end2: {guid: col-1}
//
// The category is implied by the section. Property order follows the file.
type fixtureFile struct {
	Entities      []fixtureRecord `yaml:"entities"`
	Relationships []fixtureRecord `yaml:"relationships"`
}

type fixtureRecord struct {
	GUID            string                  `yaml:"guid"`
	Type            instance.TypeDescriptor `yaml:"type"`
	Properties      yaml.Node               `yaml:"properties"`
	Classifications []fixtureClassification `yaml:"classifications"`
	System          instance.SystemInfo     `yaml:"system"`
	End1            *instance.Proxy         `yaml:"end1"`
	End2            *instance.Proxy         `yaml:"end2"`
}

type fixtureClassification struct {
	Name       string              `yaml:"name"`
	Origin     instance.Provenance `yaml:"origin"`
	Properties yaml.Node           `yaml:"properties"`
}

// ParseFixtures decodes the records of one fixture document. Records
// without a GUID get a random one, so they can be fetched but not referenced
// from relationships.
func ParseFixtures(data []byte) ([]*instance.Record, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	records := make([]*instance.Record, 0, len(f.Entities)+len(f.Relationships))
	for i := range f.Entities {
		r, err := f.Entities[i].record(instance.CategoryEntity)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	for i := range f.Relationships {
		r, err := f.Relationships[i].record(instance.CategoryRelationship)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (fr *fixtureRecord) record(category instance.Category) (*instance.Record, error) {
	guid := fr.GUID
	if guid == "" {
		guid = uuid.New().String()
	}

	props, err := propertiesFromNode(&fr.Properties)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", guid, err)
	}

	r := &instance.Record{
		GUID:       guid,
		Type:       fr.Type,
		Properties: props,
		System:     fr.System,
		End1:       fr.End1,
		End2:       fr.End2,
	}
	r.Type.Category = category
	if r.System.Status == "" {
		r.System.Status = instance.StatusActive
	}

	for _, fc := range fr.Classifications {
		cp, err := propertiesFromNode(&fc.Properties)
		if err != nil {
			return nil, fmt.Errorf("record %s classification %s: %w", guid, fc.Name, err)
		}
		r.Classifications = append(r.Classifications, instance.Classification{
			Name:       fc.Name,
			Origin:     fc.Origin,
			Properties: cp,
		})
	}

	if err := validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// propertiesFromNode converts a YAML mapping into a bag, keeping the key
// order of the document.
func propertiesFromNode(n *yaml.Node) (*instance.Properties, error) {
	p := instance.NewProperties()
	if n == nil || n.Kind == 0 {
		return p, nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return p, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("properties must be a mapping, line %d", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		v, err := valueFromNode(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}
		p.Set(key, v)
	}
	return p, nil
}

func valueFromNode(n *yaml.Node) (instance.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		nested, err := propertiesFromNode(n)
		if err != nil {
			return instance.Value{}, err
		}
		return instance.Map(nested), nil
	case yaml.SequenceNode:
		items := make([]instance.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := valueFromNode(c)
			if err != nil {
				return instance.Value{}, err
			}
			items = append(items, v)
		}
		return instance.Array(items...), nil
	case yaml.AliasNode:
		return valueFromNode(n.Alias)
	default:
		var x any
		if err := n.Decode(&x); err != nil {
			return instance.Value{}, err
		}
		return instance.FromAny(x), nil
	}
}

// LoadFixtureFile reads the records of one fixture file.
func LoadFixtureFile(path string) ([]*instance.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}
	records, err := ParseFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// FixtureFiles expands glob patterns (with ** support) into the sorted list
// of matching regular files.
func FixtureFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFixtures reads every fixture file matching patterns. A GUID defined
// in more than one file is an error.
func LoadFixtures(patterns []string) ([]*instance.Record, error) {
	files, err := FixtureFiles(patterns)
	if err != nil {
		return nil, err
	}

	owners := make(map[Key]string)
	var records []*instance.Record
	for _, file := range files {
		loaded, err := LoadFixtureFile(file)
		if err != nil {
			return nil, err
		}
		for _, r := range loaded {
			key := KeyOf(r)
			if prev, dup := owners[key]; dup {
				return nil, fmt.Errorf("%w: %s defined in %s and %s", ErrInvalidRecord, key, prev, file)
			}
			owners[key] = file
			records = append(records, r)
		}
	}
	return records, nil
}
