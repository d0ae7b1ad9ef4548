package elements

import "fmt"

// SortOrder is the DataItemSortOrder of a schema attribute.
type SortOrder int

const (
	SortOrderUnknown    SortOrder = 0
	SortOrderAscending  SortOrder = 1
	SortOrderDescending SortOrder = 2
	SortOrderUnsorted   SortOrder = 99
)

var sortOrderNames = map[SortOrder]string{
	SortOrderUnknown:    "UNKNOWN",
	SortOrderAscending:  "ASCENDING",
	SortOrderDescending: "DESCENDING",
	SortOrderUnsorted:   "UNSORTED",
}

func (s SortOrder) String() string {
	if name, ok := sortOrderNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SortOrder(%d)", int(s))
}

// MarshalText renders the symbolic name.
func (s SortOrder) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SortOrderFromName maps a symbolic name to a SortOrder.
func SortOrderFromName(name string) (SortOrder, bool) {
	for s, n := range sortOrderNames {
		if n == name {
			return s, true
		}
	}
	return SortOrderUnknown, false
}

// KeyPattern describes how a primary key is managed.
type KeyPattern int

const (
	KeyPatternLocal     KeyPattern = 0
	KeyPatternRecycled  KeyPattern = 1
	KeyPatternNatural   KeyPattern = 2
	KeyPatternMirror    KeyPattern = 3
	KeyPatternAggregate KeyPattern = 4
	KeyPatternCallers   KeyPattern = 5
	KeyPatternStable    KeyPattern = 6
	KeyPatternOther     KeyPattern = 99
)

var keyPatternNames = map[KeyPattern]string{
	KeyPatternLocal:     "LOCAL_KEY",
	KeyPatternRecycled:  "RECYCLED_KEY",
	KeyPatternNatural:   "NATURAL_KEY",
	KeyPatternMirror:    "MIRROR_KEY",
	KeyPatternAggregate: "AGGREGATE_KEY",
	KeyPatternCallers:   "CALLERS_KEY",
	KeyPatternStable:    "STABLE_KEY",
	KeyPatternOther:     "OTHER",
}

func (k KeyPattern) String() string {
	if name, ok := keyPatternNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyPattern(%d)", int(k))
}

// MarshalText renders the symbolic name.
func (k KeyPattern) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KeyPatternFromName maps a symbolic name to a KeyPattern.
func KeyPatternFromName(name string) (KeyPattern, bool) {
	for k, n := range keyPatternNames {
		if n == name {
			return k, true
		}
	}
	return KeyPatternOther, false
}
