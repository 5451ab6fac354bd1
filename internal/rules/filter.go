package rules

import (
	"strings"

	"obfuskeep/internal/ast"
)

// DefaultMaxRules caps how many rules a single file's prompt may cite.
const DefaultMaxRules = 20

// Filter judges rule relevance against one file's extracted symbols.
type Filter struct {
	corpus Corpus
}

func NewFilter(corpus Corpus) *Filter {
	return &Filter{corpus: corpus}
}

// Identifiers walks the extraction result and collects every string found
// under a "name" field and every value under a "symbolName" field, however
// deeply nested. The analyzer nests freely, so the walk covers the whole
// map/slice/scalar union rather than known fields only.
func Identifiers(symbols []ast.Symbol) map[string]struct{} {
	ids := make(map[string]struct{})
	var walk func(v any)
	walk = func(v any) {
		switch x := v.(type) {
		case map[string]any:
			if name, ok := x["name"].(string); ok {
				ids[name] = struct{}{}
			}
			if sym, ok := x["symbolName"]; ok {
				if s, ok := sym.(string); ok {
					ids[s] = struct{}{}
				}
			}
			for _, vv := range x {
				walk(vv)
			}
		case []any:
			for _, item := range x {
				walk(item)
			}
		}
	}
	for _, s := range symbols {
		walk(map[string]any(s))
	}
	return ids
}

// FilterForFile returns the first maxRules relevant rules in corpus order.
// This is a first-N selection, not a ranking: once the cap is reached the
// rest of the corpus is not scanned.
func (f *Filter) FilterForFile(symbols []ast.Symbol, maxRules int) []Rule {
	if maxRules <= 0 {
		maxRules = DefaultMaxRules
	}
	ids := Identifiers(symbols)
	if len(ids) == 0 {
		return nil
	}

	var out []Rule
	for _, rule := range f.corpus.Rules {
		if relevant(rule, ids, symbols) {
			out = append(out, rule)
			if len(out) >= maxRules {
				break
			}
		}
	}
	return out
}

// relevant implements the fixed heuristic chain; the first matching branch
// decides.
func relevant(rule Rule, ids map[string]struct{}, symbols []ast.Symbol) bool {
	desc := strings.ToLower(rule.Description)

	if strings.Contains(desc, "uikit") || strings.Contains(desc, "uiview") {
		if anyIdentifierContains(ids, "ui") {
			return true
		}
	}
	if strings.Contains(desc, "appdelegate") || strings.Contains(desc, "scenedelegate") {
		if anyIdentifierContains(ids, "delegate") {
			return true
		}
	}
	if strings.Contains(desc, "@objc") || strings.Contains(desc, "objective-c") {
		for _, sym := range symbols {
			for _, attr := range sym.Attributes() {
				if strings.Contains(attr, "@objc") {
					return true
				}
			}
		}
	}
	if strings.Contains(desc, "codable") {
		if anyIdentifierContains(ids, "codable") || anyIdentifierContains(ids, "decodable") {
			return true
		}
	}

	for _, clause := range rule.Pattern {
		for _, where := range clause.Where {
			for id := range ids {
				if id != "" && strings.Contains(where, id) {
					return true
				}
			}
		}
	}
	return false
}

func anyIdentifierContains(ids map[string]struct{}, sub string) bool {
	for id := range ids {
		if strings.Contains(strings.ToLower(id), sub) {
			return true
		}
	}
	return false
}
