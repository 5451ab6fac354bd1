// Package ast extracts structural symbol information from Swift sources by
// invoking the external SwiftASTAnalyzer binary and normalizing whatever
// shape it prints into a flat symbol list.
package ast

import "fmt"

// Symbol is one structural entity (class, method, property, ...) as emitted
// by the analyzer. The analyzer's schema is open-ended, so symbols stay
// generic maps; helpers below cover the fields the pipeline cares about.
type Symbol map[string]any

// Name returns the symbol's name field when it is a string.
func (s Symbol) Name() string {
	if v, ok := s["name"].(string); ok {
		return v
	}
	return ""
}

// Attributes returns the string forms of the symbol's attributes entries
// (runtime-exposure markers like "@objc", access modifiers, etc.).
func (s Symbol) Attributes() []string {
	raw, ok := s["attributes"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		out = append(out, fmt.Sprint(a))
	}
	return out
}
