package classify

import (
	"strings"

	"DisclosureNotifier/internal/config"
	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
)

// Classifier applies ordered keyword rules to disclosure text.
// Exclusion keywords always win, then category rules in declared order,
// first match deciding. Matching is plain substring containment against
// the text exactly as authored in the rule lists.
type Classifier struct {
	exclude    []string
	categories []config.CategoryRule
}

var _ ports.Classifier = (*Classifier)(nil)

// New builds a classifier from configured rule lists.
func New(rules config.RulesConfig) *Classifier {
	return &Classifier{
		exclude:    rules.Exclude,
		categories: rules.Categories,
	}
}

// Classify maps text to a category. Total and deterministic; text matching
// no rule falls through to CategoryIgnore.
func (c *Classifier) Classify(text string) domain.Category {
	for _, kw := range c.exclude {
		if kw != "" && strings.Contains(text, kw) {
			return domain.CategoryIgnore
		}
	}

	for _, rule := range c.categories {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}

	return domain.CategoryIgnore
}
