package rules

import (
	"fmt"
	"strings"
)

// NoRulesMatched is the fixed sentence rendered when filtering found nothing.
const NoRulesMatched = "No specific rules matched for this file."

// formatCap bounds how many filtered rules the prompt actually shows; rules
// beyond it are dropped silently.
const formatCap = 10

// FormatForPrompt renders filtered rules as the prompt's numbered example
// list, with a disclaimer that the list is illustrative, not exhaustive.
func FormatForPrompt(filtered []Rule) string {
	if len(filtered) == 0 {
		return NoRulesMatched
	}

	var b strings.Builder
	b.WriteString("**Relevant Exclusion Rule Examples:**\n\n")
	b.WriteString("*Note: These rules are EXAMPLES. Use your expertise to find ALL identifiers that should be excluded, even if they don't match these exact patterns.*\n\n")

	for i, rule := range filtered {
		if i >= formatCap {
			break
		}
		id := rule.ID
		if id == "" {
			id = "UNKNOWN"
		}
		desc := rule.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&b, "%d. **Rule ID**: `%s`\n", i+1, id)
		fmt.Fprintf(&b, "   **Description**: %s\n", desc)
		if len(rule.Pattern) > 0 {
			b.WriteString("   **Pattern**: Checks for specific symbol attributes\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
