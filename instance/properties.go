package instance

import "sort"

// Properties is an ordered attribute bag. Keys are unique and keep their
// insertion order. A nil *Properties behaves as an empty bag for reads and
// extraction.
//
// Properties is not safe for concurrent mutation. Projection works on a
// Clone so that records shared between goroutines are never modified.
type Properties struct {
	keys   []string
	values map[string]Value
}

// NewProperties creates an empty bag.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

// PropertiesFromMap builds a bag from native Go values with keys in sorted
// order.
func PropertiesFromMap(m map[string]any) *Properties {
	p := NewProperties()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, FromAny(m[k]))
	}
	return p
}

// Set stores a value. An existing key keeps its position. Setting a zero
// Value is a no-op so that absent and unset mean the same thing.
func (p *Properties) Set(key string, v Value) *Properties {
	if v.IsZero() {
		return p
	}
	if p.values == nil {
		p.values = make(map[string]Value)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
	return p
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Extract returns the value stored under key and removes it from the bag.
// A second Extract of the same key reports false.
func (p *Properties) Extract(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	if !ok {
		return Value{}, false
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i:i], p.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Len returns the number of entries still present.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the present keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Remainder returns every entry still present in native Go form. It returns
// nil for an empty bag so that beans without leftovers carry no map.
func (p *Properties) Remainder() map[string]any {
	if p.Len() == 0 {
		return nil
	}
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k].Interface()
	}
	return out
}

// Clone returns a deep copy of the bag. Cloning nil yields an empty bag.
func (p *Properties) Clone() *Properties {
	out := NewProperties()
	if p == nil {
		return out
	}
	out.keys = make([]string, len(p.keys))
	copy(out.keys, p.keys)
	for k, v := range p.values {
		out.values[k] = v.clone()
	}
	return out
}

// Range calls fn for each entry in order until fn returns false.
func (p *Properties) Range(fn func(key string, v Value) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.values[k]) {
			return
		}
	}
}
