package repository

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"resilient-wa-agent/internal/entities"
)

//go:embed templates.yaml
var defaultTemplates []byte

// templatesFile is the on-disk shape of the rule table.
type templatesFile struct {
	Templates []entities.Rule        `yaml:"templates"`
	Knowledge entities.KnowledgeBase `yaml:"knowledge_base"`
}

// TemplateRegistry holds the ordered rule list plus the organization
// knowledge base. It is built once at startup and read-only afterwards,
// so concurrent webhook deliveries can share it without locking.
type TemplateRegistry struct {
	rules     []entities.Rule
	fallback  int
	knowledge entities.KnowledgeBase
}

// LoadTemplates builds the registry from the embedded templates.yaml, or
// from path when it is non-empty (TEMPLATES_PATH override).
func LoadTemplates(path string) (*TemplateRegistry, error) {
	data := defaultTemplates
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read templates file: %w", err)
		}
		data = b
	}

	var f templatesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return NewTemplateRegistry(f.Templates, f.Knowledge)
}

// NewTemplateRegistry validates the rule list and returns a registry.
// Rule order is preserved: it is the match-priority order.
func NewTemplateRegistry(rules []entities.Rule, kb entities.KnowledgeBase) (*TemplateRegistry, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("template registry: no rules defined")
	}

	fallback := -1
	for i := range rules {
		r := &rules[i]
		if r.Category == "" {
			return nil, fmt.Errorf("template registry: rule %d has no category", i)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("template registry: rule %q has no keywords", r.Category)
		}
		for j, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("template registry: rule %q has an empty keyword", r.Category)
			}
			r.Keywords[j] = kw
		}
		if strings.TrimSpace(r.Response) == "" {
			return nil, fmt.Errorf("template registry: rule %q has an empty response", r.Category)
		}
		if r.Fallback {
			if fallback >= 0 {
				return nil, fmt.Errorf("template registry: rules %q and %q both flagged fallback", rules[fallback].Category, r.Category)
			}
			fallback = i
		}
	}
	if fallback < 0 {
		return nil, fmt.Errorf("template registry: no rule flagged fallback")
	}

	return &TemplateRegistry{rules: rules, fallback: fallback, knowledge: kb}, nil
}

// Rules returns the rule list in match-priority order. Callers must not
// modify the returned slice.
func (t *TemplateRegistry) Rules() []entities.Rule {
	return t.rules
}

// Fallback returns the designated last-resort rule.
func (t *TemplateRegistry) Fallback() entities.Rule {
	return t.rules[t.fallback]
}

// Knowledge returns the organization knowledge base.
func (t *TemplateRegistry) Knowledge() entities.KnowledgeBase {
	return t.knowledge
}

// Count returns the number of rules.
func (t *TemplateRegistry) Count() int {
	return len(t.rules)
}
