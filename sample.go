package smile_request_report

import (
	"bytes"
	"encoding/json"
)

// Field is one optional JSON value. An absent key and a key holding the empty
// string are different states and the classifier treats them differently.
type Field struct {
	Present bool
	Raw     json.RawMessage
}

// IsNull reports whether the field is present with a JSON null.
func (f Field) IsNull() bool {
	return f.Present && bytes.Equal(bytes.TrimSpace(f.Raw), []byte("null"))
}

// Str returns the decoded value when the field holds a JSON string.
func (f Field) Str() (string, bool) {
	if !f.Present {
		return "", false
	}
	raw := bytes.TrimSpace(f.Raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Is reports whether the field is a JSON string equal to one of values.
func (f Field) Is(values ...string) bool {
	s, ok := f.Str()
	if !ok {
		return false
	}
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}

// NonEmpty is true for any present value other than the empty string. A
// null value counts as non-empty.
func (f Field) NonEmpty() bool {
	return f.Present && !f.Is("")
}

// Text renders the value for the report: strings unquoted, anything else as
// its JSON text.
func (f Field) Text() string {
	if s, ok := f.Str(); ok {
		return s
	}
	return string(bytes.TrimSpace(f.Raw))
}

// SampleRecord is one entry of a request's samples list, kept as raw values
// keyed by field name so key presence survives decoding.
type SampleRecord map[string]json.RawMessage

// Field looks up a top-level key.
func (s SampleRecord) Field(name string) Field {
	raw, ok := s[name]
	return Field{Present: ok, Raw: raw}
}

// Has reports whether the key exists, whatever its value.
func (s SampleRecord) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Nested returns the object stored under name. The second result is false
// when the key is absent. A present value that is not an object yields an
// empty record.
func (s SampleRecord) Nested(name string) (SampleRecord, bool) {
	raw, ok := s[name]
	if !ok {
		return nil, false
	}
	var nested SampleRecord
	if err := json.Unmarshal(raw, &nested); err != nil || nested == nil {
		return SampleRecord{}, true
	}
	return nested, true
}
