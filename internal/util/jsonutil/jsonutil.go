// Package jsonutil provides JSON encoding without HTML escaping. Prompt
// bodies embed raw source code; "<", ">" and "&" must survive verbatim or
// the model sees < noise instead of Swift.
package jsonutil

import (
	"bytes"
	"encoding/json"
)

// MarshalNoEscape encodes v without escaping <, >, & and without the
// trailing newline json.Encoder appends.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
