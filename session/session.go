package session

import (
	"encoding/json"
	"errors"
)

// ErrDestroyed is returned when trying to use a destroyed session.
// Renew the session before using it again.
var ErrDestroyed = errors.New("the session is already destroyed, " +
	"renew the session before using it")

// Encoder is an interface for encoding and decoding session data.
type Encoder interface {
	Encode(any) ([]byte, error)
	Decode([]byte, any) error
}

// JsonEncoder implements the Encoder interface using JSON
// serialization.
type JsonEncoder struct{}

// Encode serializes the given value into JSON.
func (e *JsonEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Decode deserializes the JSON data into the provided value.
func (e *JsonEncoder) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Session represents a user session with data storage capabilities.
type Session struct {
	Id        string
	Changed   bool
	Data      map[string]any
	Destroyed bool
}

// Clear removes all data from the session and marks it as changed.
func (s *Session) Clear() {
	s.Data = map[string]any{}
	s.Changed = true
}

// Delete removes a key-value pair from the session data.
func (s *Session) Delete(key string) error {
	if s.Destroyed {
		return ErrDestroyed
	}
	delete(s.Data, key)
	s.Changed = true
	return nil
}

// Destroy clears the session data and marks it as destroyed.
func (s *Session) Destroy() {
	s.Clear()
	s.Destroyed = true
}

// Get retrieves a value from the session by key. A missing key yields
// nil without an error.
func (s *Session) Get(key string) (any, error) {
	if s.Destroyed {
		return nil, ErrDestroyed
	}
	return s.Data[key], nil
}

// Has checks if a key exists in the session data.
func (s *Session) Has(key string) (bool, error) {
	if s.Destroyed {
		return false, ErrDestroyed
	}
	_, ok := s.Data[key]
	return ok, nil
}

// Set adds or updates a key-value pair in the session data.
func (s *Session) Set(key string, value any) error {
	if s.Destroyed {
		return ErrDestroyed
	}
	s.Data[key] = value
	s.Changed = true
	return nil
}
