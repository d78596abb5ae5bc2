// Package protocol defines the WebSocket message vocabulary between
// the hive server and its clients. Every frame is an Envelope: a type
// tag plus a JSON payload.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope wraps one wire message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload into an envelope of the given type.
func NewEnvelope(typ string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", typ, err)
	}
	return Envelope{Type: typ, Payload: data}, nil
}

// MustEnvelope is NewEnvelope for payload types the server owns, where
// a marshal failure is a programming error.
func MustEnvelope(typ string, payload interface{}) Envelope {
	e, err := NewEnvelope(typ, payload)
	if err != nil {
		panic(err)
	}
	return e
}

// Decode unmarshals the envelope payload into dst.
func (e Envelope) Decode(dst interface{}) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}
