package entities

// Rule maps a set of keywords to a pre-authored response template.
// Rules are loaded once at startup and immutable afterwards; their order
// in the registry is the match-priority order (first match wins).
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
	Fallback bool     `yaml:"fallback"`
}

// Project describes one foundation initiative shown on the dashboard and
// fed into the generative system prompt.
type Project struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Features    []string `yaml:"features"`
}

// Contact holds the foundation's public contact details.
type Contact struct {
	Email       string `yaml:"email"`
	Website     string `yaml:"website"`
	Coordinator string `yaml:"coordinator"`
}

// KnowledgeBase is the static organization profile loaded alongside the
// rule table.
type KnowledgeBase struct {
	Mission  string    `yaml:"mission"`
	Projects []Project `yaml:"projects"`
	Contact  Contact   `yaml:"contact"`
}
