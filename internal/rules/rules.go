// Package rules loads the declarative exclusion-rule corpus and selects,
// per source file, the small subset of rules worth showing the model.
package rules

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Clause is one pattern clause; Where entries are matched against file
// identifiers by literal substring containment.
type Clause struct {
	Where []string `yaml:"where"`
}

// Rule is one exclusion heuristic from the corpus.
type Rule struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Pattern     []Clause `yaml:"pattern"`
}

// Corpus is the full ordered rule list, loaded once and read-only afterwards.
// Corpus order matters: filtering is first-N, so earlier rules win the cap.
type Corpus struct {
	Rules []Rule `yaml:"rules"`
}

// LoadCorpus reads the YAML corpus at path. A missing file or a parse error
// degrades to an empty corpus with a warning; rules are advisory, never
// load-bearing.
func LoadCorpus(path string, logger *log.Logger) Corpus {
	if logger == nil {
		logger = log.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("rules: corpus not loaded from %s: %v", path, err)
		return Corpus{}
	}
	var corpus Corpus
	if err := yaml.Unmarshal(raw, &corpus); err != nil {
		logger.Printf("rules: invalid YAML in %s: %v", path, err)
		return Corpus{}
	}
	return corpus
}
