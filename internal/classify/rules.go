package classify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/expenso-dev/expenso/internal/model"
)

// TypeRule maps description keywords to a transaction type.
// Debit applies to money leaving the account, Credit to money entering it.
type TypeRule struct {
	Name     string                `yaml:"name"`
	Keywords []string              `yaml:"keywords"`
	Debit    model.TransactionType `yaml:"debit"`
	Credit   model.TransactionType `yaml:"credit"`
}

// CategoryRule maps description keywords to a spending category.
type CategoryRule struct {
	Category model.Category `yaml:"category"`
	Keywords []string       `yaml:"keywords"`
}

// SourceRule maps text keywords to a bank or wallet name.
type SourceRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules holds every keyword table. Slice order is priority order: the first
// rule with a matching keyword wins.
type Rules struct {
	Types      []TypeRule     `yaml:"types,omitempty"`
	Categories []CategoryRule `yaml:"categories"`
	Sources    []SourceRule   `yaml:"sources"`
}

// RulesFile is the rules path relative to a ledger repo root.
const RulesFile = "rules/categorization-rules.yaml"

// LoadRules reads a rules file. A missing file, or a missing section within
// it, falls back to the built-in defaults.
func LoadRules(path string) (Rules, error) {
	defaults := DefaultRules()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing rules: %w", err)
	}
	if len(rules.Types) == 0 {
		rules.Types = defaults.Types
	}
	if len(rules.Categories) == 0 {
		rules.Categories = defaults.Categories
	}
	if len(rules.Sources) == 0 {
		rules.Sources = defaults.Sources
	}
	if err := rules.validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules %s: %w", path, err)
	}
	return rules, nil
}

// SaveRules writes rules as YAML.
func SaveRules(path string, rules Rules) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

func (r Rules) validate() error {
	for i, tr := range r.Types {
		if !tr.Debit.Valid() || !tr.Credit.Valid() {
			return fmt.Errorf("type rule %d (%s): unknown transaction type", i, tr.Name)
		}
	}
	for i, cr := range r.Categories {
		if model.ParseCategory(string(cr.Category)) != cr.Category {
			return fmt.Errorf("category rule %d: unknown category %q", i, cr.Category)
		}
	}
	for i, sr := range r.Sources {
		if strings.TrimSpace(sr.Name) == "" {
			return fmt.Errorf("source rule %d: name is empty", i)
		}
	}
	return nil
}

// containsAny reports whether text contains any keyword. Both are expected lower-case.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	return out
}
