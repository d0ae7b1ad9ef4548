package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semconv/convert"
	"github.com/c360studio/semconv/instance"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "semconv",
		Category:    "record",
		Version:     "v1",
		Description: "Metadata record payload for graph ingestion with triples",
		Factory:     func() any { return &RecordPayload{} },
	})
	if err != nil {
		panic("failed to register RecordPayload: " + err.Error())
	}

	err = component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "semconv",
		Category:    "projection-failure",
		Version:     "v1",
		Description: "Structured report of a failed bean projection",
		Factory:     func() any { return &FailurePayload{} },
	})
	if err != nil {
		panic("failed to register FailurePayload: " + err.Error())
	}
}

// RecordType is the message type for record payloads.
var RecordType = message.Type{Domain: "semconv", Category: "record", Version: "v1"}

// FailureType is the message type for projection failure payloads.
var FailureType = message.Type{Domain: "semconv", Category: "projection-failure", Version: "v1"}

// RecordPayload carries one entity or relationship as triples.
type RecordPayload struct {
	ID         string                  `json:"id"`
	Type       instance.TypeDescriptor `json:"type"`
	End1       *instance.Proxy         `json:"end1,omitempty"`
	End2       *instance.Proxy         `json:"end2,omitempty"`
	TripleData []message.Triple        `json:"triples"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func (p *RecordPayload) EntityID() string          { return p.ID }
func (p *RecordPayload) Triples() []message.Triple { return p.TripleData }
func (p *RecordPayload) Schema() message.Type      { return RecordType }

func (p *RecordPayload) Validate() error {
	if p.ID == "" {
		return errors.New("record ID is required")
	}
	if p.Type.Name == "" {
		return errors.New("record type is required")
	}
	return nil
}

// Record rebuilds the record the payload was made from.
func (p *RecordPayload) Record() *instance.Record {
	r := instance.FromTriples(p.ID, p.Type, p.TripleData)
	r.End1, r.End2 = p.End1, p.End2
	return r
}

func (p *RecordPayload) MarshalJSON() ([]byte, error) {
	type Alias RecordPayload
	return json.Marshal((*Alias)(p))
}

func (p *RecordPayload) UnmarshalJSON(data []byte) error {
	type Alias RecordPayload
	return json.Unmarshal(data, (*Alias)(p))
}

// FailurePayload carries a projection failure report.
type FailurePayload struct {
	Report convert.Report `json:"report"`
}

func (p *FailurePayload) Schema() message.Type { return FailureType }

func (p *FailurePayload) Validate() error {
	if p.Report.ID == "" {
		return errors.New("report ID is required")
	}
	if p.Report.Kind == "" {
		return errors.New("report kind is required")
	}
	return nil
}

func (p *FailurePayload) MarshalJSON() ([]byte, error) {
	type Alias FailurePayload
	return json.Marshal((*Alias)(p))
}

func (p *FailurePayload) UnmarshalJSON(data []byte) error {
	type Alias FailurePayload
	return json.Unmarshal(data, (*Alias)(p))
}
