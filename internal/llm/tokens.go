package llm

import "strings"

// CountTokens gives a rough token count for text: whitespace-delimited words
// with a character-based fallback. Good enough for dataset sizing reports;
// not a tokenizer.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if words := strings.Fields(text); len(words) > 0 {
		return len(words)
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}
