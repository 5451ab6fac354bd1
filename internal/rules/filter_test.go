package rules

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obfuskeep/internal/ast"
)

func symbolsFor(names ...string) []ast.Symbol {
	var out []ast.Symbol
	for _, n := range names {
		out = append(out, ast.Symbol{"name": n})
	}
	return out
}

func TestIdentifiers_RecursiveCollection(t *testing.T) {
	symbols := []ast.Symbol{
		{
			"name": "OuterClass",
			"members": []any{
				map[string]any{"name": "innerMethod"},
				map[string]any{"symbolName": "dynamicLookup"},
			},
			"meta": map[string]any{
				"nested": map[string]any{"name": "deepProperty"},
			},
		},
	}
	ids := Identifiers(symbols)
	for _, want := range []string{"OuterClass", "innerMethod", "dynamicLookup", "deepProperty"} {
		if _, ok := ids[want]; !ok {
			t.Fatalf("missing identifier %q in %v", want, ids)
		}
	}
}

func TestFilterForFile_EmptyIdentifiers(t *testing.T) {
	corpus := Corpus{Rules: []Rule{{ID: "R1", Description: "uikit views"}}}
	f := NewFilter(corpus)

	got := f.FilterForFile(nil, 20)
	assert.Empty(t, got, "no identifiers must mean no rules")

	got = f.FilterForFile([]ast.Symbol{{"kind": "comment"}}, 20)
	assert.Empty(t, got)
}

func TestFilterForFile_HeuristicChain(t *testing.T) {
	corpus := Corpus{Rules: []Rule{
		{ID: "UI", Description: "UIKit base view subclasses keep their selectors"},
		{ID: "DELEGATE", Description: "AppDelegate entry points stay stable"},
		{ID: "OBJC", Description: "Symbols exposed via @objc must keep their names"},
		{ID: "CODABLE", Description: "Codable property names are serialization contract"},
		{ID: "WHERE", Description: "unrelated text", Pattern: []Clause{{Where: []string{"name contains MySpecialType"}}}},
	}}
	f := NewFilter(corpus)

	cases := []struct {
		name    string
		symbols []ast.Symbol
		wantIDs []string
	}{
		{"ui match", symbolsFor("MyUIButton"), []string{"UI"}},
		{"delegate match", symbolsFor("SceneDelegateImpl"), []string{"DELEGATE"}},
		{
			"objc attribute match",
			[]ast.Symbol{{"name": "Exposed", "attributes": []any{"@objc", "public"}}},
			[]string{"OBJC"},
		},
		{"codable match", symbolsFor("UserDecodable"), []string{"CODABLE"}},
		{"where clause match", symbolsFor("MySpecialType"), []string{"WHERE"}},
		{"no match", symbolsFor("Plain"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.FilterForFile(tc.symbols, 20)
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestFilterForFile_Bounded(t *testing.T) {
	var corpus Corpus
	for i := 0; i < 50; i++ {
		corpus.Rules = append(corpus.Rules, Rule{
			ID:          fmt.Sprintf("R%02d", i),
			Description: "uiview related rule",
		})
	}
	f := NewFilter(corpus)
	symbols := symbolsFor("SomeUIView")

	for _, k := range []int{1, 5, 20} {
		got := f.FilterForFile(symbols, k)
		require.Len(t, got, k)
		// First-N in corpus order, not ranked.
		assert.Equal(t, "R00", got[0].ID)
	}

	// maxRules <= 0 falls back to the default cap.
	assert.Len(t, f.FilterForFile(symbols, 0), DefaultMaxRules)
}

func TestFormatForPrompt(t *testing.T) {
	assert.Equal(t, NoRulesMatched, FormatForPrompt(nil))

	var filtered []Rule
	for i := 0; i < 15; i++ {
		filtered = append(filtered, Rule{
			ID:          fmt.Sprintf("R%02d", i),
			Description: "desc",
			Pattern:     []Clause{{Where: []string{"x"}}},
		})
	}
	out := FormatForPrompt(filtered)
	assert.Contains(t, out, "R00")
	assert.Contains(t, out, "10. **Rule ID**: `R09`")
	assert.NotContains(t, out, "R10", "formatting must cap at 10 rules")
	assert.Contains(t, out, "These rules are EXAMPLES")
}

func TestLoadCorpus(t *testing.T) {
	logger := log.New(os.Stderr, "", 0)

	t.Run("missing file", func(t *testing.T) {
		corpus := LoadCorpus(filepath.Join(t.TempDir(), "absent.yaml"), logger)
		assert.Empty(t, corpus.Rules)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(p, []byte("rules: [unclosed"), 0o644))
		corpus := LoadCorpus(p, logger)
		assert.Empty(t, corpus.Rules)
	})

	t.Run("valid corpus", func(t *testing.T) {
		doc := strings.TrimSpace(`
rules:
  - id: KEEP_OBJC
    description: Symbols exposed via @objc
    pattern:
      - where:
          - attribute contains @objc
  - id: KEEP_CODABLE
    description: Codable conformances
`)
		p := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
		corpus := LoadCorpus(p, logger)
		require.Len(t, corpus.Rules, 2)
		assert.Equal(t, "KEEP_OBJC", corpus.Rules[0].ID)
		require.Len(t, corpus.Rules[0].Pattern, 1)
		assert.Equal(t, []string{"attribute contains @objc"}, corpus.Rules[0].Pattern[0].Where)
	})
}
