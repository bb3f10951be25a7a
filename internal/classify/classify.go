// Package classify infers transaction types, spending categories and
// originating institutions from free text using ordered keyword rules.
package classify

import (
	"strings"

	"github.com/expenso-dev/expenso/internal/model"
)

// TypeClassifier infers a transaction type from a description.
// It is immutable and safe for concurrent use.
type TypeClassifier struct {
	rules []TypeRule
}

// NewTypeClassifier builds a classifier over rules in priority order.
func NewTypeClassifier(rules []TypeRule) *TypeClassifier {
	c := &TypeClassifier{rules: make([]TypeRule, len(rules))}
	for i, r := range rules {
		r.Keywords = lowerAll(r.Keywords)
		c.rules[i] = r
	}
	return c
}

// DefaultTypeClassifier uses the built-in type rules.
func DefaultTypeClassifier() *TypeClassifier {
	return NewTypeClassifier(defaultTypeRules())
}

// Classify returns the type of the first rule whose keywords appear in
// description, or DEBIT/CREDIT by side when none match.
func (c *TypeClassifier) Classify(description string, isDebit bool) model.TransactionType {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		if !containsAny(desc, r.Keywords) {
			continue
		}
		if isDebit {
			return r.Debit
		}
		return r.Credit
	}
	if isDebit {
		return model.TypeDebit
	}
	return model.TypeCredit
}

// CategoryClassifier maps a description to a spending category.
// It is immutable and safe for concurrent use.
type CategoryClassifier struct {
	rules []CategoryRule
}

// NewCategoryClassifier builds a classifier over rules in priority order.
func NewCategoryClassifier(rules []CategoryRule) *CategoryClassifier {
	c := &CategoryClassifier{rules: make([]CategoryRule, len(rules))}
	for i, r := range rules {
		r.Keywords = lowerAll(r.Keywords)
		c.rules[i] = r
	}
	return c
}

// DefaultCategoryClassifier uses the built-in category rules.
func DefaultCategoryClassifier() *CategoryClassifier {
	return NewCategoryClassifier(defaultCategoryRules())
}

// Categorize returns the category of the first matching rule, or Other.
func (c *CategoryClassifier) Categorize(description string) model.Category {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		if containsAny(desc, r.Keywords) {
			return r.Category
		}
	}
	return model.CategoryOther
}

// SourceDetector names the bank or wallet mentioned in a piece of text.
type SourceDetector struct {
	rules    []SourceRule
	fallback string
}

// NewSourceDetector builds a detector that returns fallback when nothing matches.
func NewSourceDetector(rules []SourceRule, fallback string) *SourceDetector {
	d := &SourceDetector{rules: make([]SourceRule, len(rules)), fallback: fallback}
	for i, r := range rules {
		r.Keywords = lowerAll(r.Keywords)
		d.rules[i] = r
	}
	return d
}

// Detect returns the name of the first matching source rule.
func (d *SourceDetector) Detect(text string) string {
	lower := strings.ToLower(text)
	for _, r := range d.rules {
		if containsAny(lower, r.Keywords) {
			return r.Name
		}
	}
	return d.fallback
}

// Set bundles the classifiers built from one Rules value.
type Set struct {
	Types      *TypeClassifier
	Categories *CategoryClassifier
	Sources    *SourceDetector
}

// NewSet builds classifiers from rules. sourceFallback is returned by
// Sources.Detect when no source keyword matches.
func NewSet(rules Rules, sourceFallback string) Set {
	return Set{
		Types:      NewTypeClassifier(rules.Types),
		Categories: NewCategoryClassifier(rules.Categories),
		Sources:    NewSourceDetector(rules.Sources, sourceFallback),
	}
}
