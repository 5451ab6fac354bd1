package prompt

import (
	"strings"
	"testing"

	"obfuskeep/internal/ast"
)

const sample = "class LoginViewController: UIViewController {\n    override func viewDidLoad() {}\n}"

func TestBuildFull_ContainsAllSections(t *testing.T) {
	symbols := []ast.Symbol{{"name": "LoginViewController", "kind": "class"}}
	out := BuildFull(sample, symbols, "1. **Rule ID**: `R1`")

	if !strings.HasPrefix(out, Instruction) {
		t.Fatalf("full prompt must start with the instruction preamble")
	}
	for _, want := range []string{
		sample,
		"### AST Symbol Information:",
		"### Example Exclusion Rules (REFERENCE):",
		`"name": "LoginViewController"`,
		"1. **Rule ID**: `R1`",
		"## YOUR TASK",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("full prompt missing %q", want)
		}
	}
}

func TestBuildFull_Deterministic(t *testing.T) {
	symbols := []ast.Symbol{{"name": "A"}}
	a := BuildFull(sample, symbols, "rules")
	b := BuildFull(sample, symbols, "rules")
	if a != b {
		t.Fatalf("identical inputs produced different prompts")
	}
}

func TestBuildDegraded_OmitsStructuralSections(t *testing.T) {
	out := BuildDegraded(sample)

	if !strings.HasPrefix(out, Instruction) {
		t.Fatalf("degraded prompt must start with the instruction preamble")
	}
	if !strings.Contains(out, sample) {
		t.Fatalf("degraded prompt must contain the raw source")
	}
	for _, absent := range []string{
		"### AST Symbol Information:",
		"### Example Exclusion Rules",
	} {
		if strings.Contains(out, absent) {
			t.Fatalf("degraded prompt unexpectedly contains %q", absent)
		}
	}
}

func TestBuildInput_KeepsAngleBrackets(t *testing.T) {
	symbols := []ast.Symbol{{"name": "Stack<Element>"}}
	out := BuildInput(sample, symbols, "none")
	if !strings.Contains(out, "Stack<Element>") {
		t.Fatalf("generic angle brackets were escaped: %s", out)
	}
	if strings.Contains(out, `\u003c`) {
		t.Fatalf("HTML escaping leaked into the prompt")
	}
}
