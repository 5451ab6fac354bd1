// Package prompt renders the model-facing documents. Everything here is a
// pure function of its inputs; the same (source, symbols, rules) always
// yields the same bytes, which is what makes response caching by prompt
// hash sound.
package prompt

import (
	"fmt"
	"strings"

	"obfuskeep/internal/ast"
	"obfuskeep/internal/util/jsonutil"
)

// Instruction is the task preamble. The dataset's "instruction" field and
// the prefix of the assembled full prompt are this exact document; training
// and generation must see identical bytes.
const Instruction = `You are an expert Swift code auditor specializing in obfuscation safety analysis.

Analyze the provided Swift source code, AST (Abstract Syntax Tree), and exclusion rule examples to identify ALL identifiers that must be excluded from obfuscation.

**What to analyze:**
- Swift source code with complete implementation
- AST symbol information including attributes, inheritance, protocols, and modifiers
- Example exclusion rules (use as reference patterns, not exhaustive requirements)

**What to identify:**
- Framework delegate methods (UITableViewDelegate, UIApplicationDelegate, etc.)
- System lifecycle methods (viewDidLoad, viewWillAppear, applicationDidFinishLaunching, etc.)
- Protocol requirements and their implementations (Codable properties, Identifiable.id, etc.)
- @objc exposed symbols and Objective-C runtime dependencies
- IBOutlet, IBAction, and Interface Builder connections
- String-based lookups (KVC, KVO, NSCoding keys)
- Serialization properties (Codable, JSON keys)
- SwiftUI View body and environment properties
- Any identifiers that could break runtime behavior if renamed

**Critical instructions:**
1. The provided rules are EXAMPLES - use your Swift/iOS expertise to find additional patterns
2. Analyze ALL three inputs: source code, AST structure, and rule patterns
3. Return EVERY identifier that needs exclusion, even if not matching example rules
4. Consider runtime dependencies, framework contracts, and dynamic lookups

**Output format:**
Return a JSON object with this exact structure:
{"identifiers": ["identifier1", "identifier2", ...]}

Include ALL identifiers that must be excluded. Return empty array if none needed: {"identifiers": []}`

// outputExamples shows the model five literal answers so it stops inventing
// envelopes around the JSON.
const outputExamples = `## OUTPUT FORMAT EXAMPLES

**Example 1 - UIViewController with lifecycle methods:**
` + "```json" + `
{"identifiers": ["viewDidLoad", "viewWillAppear", "viewDidDisappear", "tableView", "numberOfRowsInSection", "cellForRowAt"]}
` + "```" + `

**Example 2 - Codable struct:**
` + "```json" + `
{"identifiers": ["id", "name", "email", "createdAt"]}
` + "```" + `

**Example 3 - @objc exposed class:**
` + "```json" + `
{"identifiers": ["MyViewController", "handleTap", "updateUI", "delegate"]}
` + "```" + `

**Example 4 - No exclusions needed:**
` + "```json" + `
{"identifiers": []}
` + "```" + `

**Example 5 - SwiftUI View:**
` + "```json" + `
{"identifiers": ["body", "navigationTitle", "onAppear"]}
` + "```"

const taskEpilogue = `## YOUR TASK

Analyze the code and return ONLY a JSON object with ALL identifiers that should be excluded from obfuscation.

**CRITICAL**: Your response must be ONLY the JSON object. Do not include any other text, explanations, or markdown formatting.

Output format:
{"identifiers": ["identifier1", "identifier2", ...]}`

// BuildInput renders the dataset "input" field: source, AST and rule
// sections. The AST JSON is indented and keeps < > & unescaped so the model
// reads real Swift.
func BuildInput(source string, symbols []ast.Symbol, rulesText string) string {
	astJSON, err := jsonutil.MarshalNoEscapeIndent(symbols, "", "  ")
	if err != nil {
		astJSON = []byte("[]")
	}
	return fmt.Sprintf(`### Swift Source Code:
`+"```swift"+`
%s
`+"```"+`

### AST Symbol Information:
`+"```json"+`
%s
`+"```"+`

### Example Exclusion Rules (REFERENCE):
%s
`, source, astJSON, rulesText)
}

// BuildDegradedInput renders the input field when no extraction result is
// available: source only, no AST or rule sections.
func BuildDegradedInput(source string) string {
	return fmt.Sprintf(`### Swift Source Code:
`+"```swift"+`
%s
`+"```"+`
`, source)
}

// BuildFull assembles the complete prompt for a file with structural
// context. Its prefix is Instruction, byte for byte.
func BuildFull(source string, symbols []ast.Symbol, rulesText string) string {
	var b strings.Builder
	b.WriteString(Instruction)
	b.WriteString("\n\n---\n\n")
	b.WriteString(outputExamples)
	b.WriteString("\n\n---\n\n## INPUT DATA\n\n")
	b.WriteString(BuildInput(source, symbols, rulesText))
	b.WriteString("\n---\n\n")
	b.WriteString(taskEpilogue)
	return b.String()
}

// BuildDegraded assembles the fallback prompt for a file whose extraction
// failed. Same instruction prefix, source section only.
func BuildDegraded(source string) string {
	var b strings.Builder
	b.WriteString(Instruction)
	b.WriteString("\n\n---\n\n")
	b.WriteString(BuildDegradedInput(source))
	b.WriteString("\n---\n\n")
	b.WriteString(taskEpilogue)
	return b.String()
}
