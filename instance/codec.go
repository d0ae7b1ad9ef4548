package instance

import (
	"encoding/json"
	"fmt"
)

// encodedValue is the tagged JSON form of a Value. The tag keeps enums,
// integers and floats distinct across a round trip through storage.
type encodedValue struct {
	Type    string          `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Ordinal int             `json:"ordinal,omitempty"`
}

type encodedEntry struct {
	Name string `json:"name"`
	encodedValue
}

// MarshalJSON encodes the value with its kind tag.
func (v Value) MarshalJSON() ([]byte, error) {
	enc, err := v.encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

func (v Value) encode() (encodedValue, error) {
	enc := encodedValue{Type: v.kind.String()}
	var payload any
	switch v.kind {
	case KindNone:
		return enc, nil
	case KindString:
		payload = v.str
	case KindEnum:
		payload = v.str
		enc.Ordinal = v.ordinal
	case KindInt:
		payload = v.num
	case KindFloat:
		payload = v.flt
	case KindBool:
		payload = v.flag
	case KindMap:
		payload = v.nested
	case KindArray:
		payload = v.items
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return enc, fmt.Errorf("marshal %s value: %w", v.kind, err)
	}
	enc.Value = raw
	return enc, nil
}

// UnmarshalJSON decodes a tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var enc encodedValue
	if err := json.Unmarshal(data, &enc); err != nil {
		return err
	}
	return v.decode(enc)
}

func (v *Value) decode(enc encodedValue) error {
	kind, err := parseKind(enc.Type)
	if err != nil {
		return err
	}
	out := Value{kind: kind}
	switch kind {
	case KindNone:
	case KindString:
		err = json.Unmarshal(enc.Value, &out.str)
	case KindEnum:
		err = json.Unmarshal(enc.Value, &out.str)
		out.ordinal = enc.Ordinal
	case KindInt:
		err = json.Unmarshal(enc.Value, &out.num)
	case KindFloat:
		err = json.Unmarshal(enc.Value, &out.flt)
	case KindBool:
		err = json.Unmarshal(enc.Value, &out.flag)
	case KindMap:
		out.nested = NewProperties()
		err = json.Unmarshal(enc.Value, out.nested)
	case KindArray:
		err = json.Unmarshal(enc.Value, &out.items)
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s value: %w", kind, err)
	}
	*v = out
	return nil
}

// MarshalJSON encodes the bag as an ordered list of named, tagged values.
func (p *Properties) MarshalJSON() ([]byte, error) {
	entries := make([]encodedEntry, 0, p.Len())
	var encErr error
	p.Range(func(key string, v Value) bool {
		enc, err := v.encode()
		if err != nil {
			encErr = fmt.Errorf("property %s: %w", key, err)
			return false
		}
		entries = append(entries, encodedEntry{Name: key, encodedValue: enc})
		return true
	})
	if encErr != nil {
		return nil, encErr
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes a bag written by MarshalJSON, preserving order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var entries []encodedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	p.keys = nil
	p.values = make(map[string]Value, len(entries))
	for _, e := range entries {
		var v Value
		if err := v.decode(e.encodedValue); err != nil {
			return fmt.Errorf("property %s: %w", e.Name, err)
		}
		p.Set(e.Name, v)
	}
	return nil
}
