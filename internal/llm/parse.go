package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Response is the validated model output. Identifiers may be empty but the
// slice is always present; parse failure yields an empty list, not an error.
type Response struct {
	Identifiers []string `json:"identifiers"`
}

// maxQuotedIdentifiers caps what the last-resort extractor may return.
const maxQuotedIdentifiers = 100

// stoplist holds meta-keywords the quoted-string extractor must never treat
// as identifiers.
var stoplist = map[string]struct{}{
	"identifiers": {},
	"reasoning":   {},
	"error":       {},
	"exclusions":  {},
	"evidence":    {},
}

var (
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment  = regexp.MustCompile(`(?m)//.*?$`)
	reArray        = regexp.MustCompile(`\[([^\]]+)\]`)
	reQuoted       = regexp.MustCompile(`"([^"]+)"`)
)

// strategy attempts to read an identifier list out of a raw reply. ok=false
// hands the input to the next strategy.
type strategy func(raw string) ([]string, bool)

// strategies run in order of decreasing strictness: a clean JSON object,
// then any bracketed array, then bare quoted strings. The first hit wins.
var strategies = []strategy{parseObject, parseArray, parseQuoted}

// ParseIdentifiers runs the strategy cascade over the model's reply. It
// never fails: unparseable input yields an empty identifier list.
func ParseIdentifiers(raw string) Response {
	for _, parse := range strategies {
		if ids, ok := parse(raw); ok {
			return Response{Identifiers: ids}
		}
	}
	return Response{Identifiers: []string{}}
}

// parseObject handles the contract-abiding case: a JSON object with an
// "identifiers" array, possibly inside a markdown fence, possibly with
// comments the model was told not to write.
func parseObject(raw string) ([]string, bool) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}
	body := clean[start : end+1]
	body = reBlockComment.ReplaceAllString(body, "")
	body = reLineComment.ReplaceAllString(body, "")

	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, false
	}
	items, ok := payload["identifiers"].([]any)
	if !ok {
		return nil, false
	}
	return coerce(items), true
}

// parseArray grabs the first bracketed span anywhere in the reply and reads
// it as a JSON string array.
func parseArray(raw string) ([]string, bool) {
	m := reArray.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal([]byte("["+m[1]+"]"), &items); err != nil {
		return nil, false
	}
	return coerce(items), true
}

// parseQuoted is the last resort: every double-quoted substring, minus the
// stoplist and obvious prose fragments, capped at maxQuotedIdentifiers.
func parseQuoted(raw string) ([]string, bool) {
	var out []string
	for _, m := range reQuoted.FindAllStringSubmatch(raw, -1) {
		id := m[1]
		if _, stopped := stoplist[id]; stopped {
			continue
		}
		if strings.HasPrefix(id, "is_") || strings.HasPrefix(id, "This ") {
			continue
		}
		out = append(out, id)
		if len(out) >= maxQuotedIdentifiers {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// coerce flattens a decoded JSON array into trimmed non-empty strings.
// Non-string scalars are stringified; falsy elements (null, false, 0, "")
// are dropped.
func coerce(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch x := item.(type) {
		case nil:
			continue
		case bool:
			if !x {
				continue
			}
			s = "true"
		case float64:
			if x == 0 {
				continue
			}
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case string:
			s = x
		default:
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
