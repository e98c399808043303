package usecases

import (
	"strings"

	"resilient-wa-agent/internal/entities"
)

// Classify returns the first rule in registry order with any keyword
// occurring as a substring of the case-folded message text, or nil when
// nothing matches. Earlier rules win ties; empty or whitespace-only text
// matches nothing.
func Classify(text string, rules []entities.Rule) *entities.Rule {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil
	}

	for i := range rules {
		for _, kw := range rules[i].Keywords {
			if strings.Contains(normalized, kw) {
				return &rules[i]
			}
		}
	}
	return nil
}
