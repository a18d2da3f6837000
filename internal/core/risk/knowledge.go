package risk

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

//go:embed knowledge.yaml
var embeddedKnowledge []byte

// KnowledgeBase is the static configuration the assessor is compiled from.
type KnowledgeBase struct {
	Severity        SeverityIndicators  `yaml:"severity"`
	Categories      []CategoryKnowledge `yaml:"categories"`
	StandardClauses []StandardClause    `yaml:"standard_clauses"`
}

// SeverityIndicators are lower-case phrases checked in order critical, high, medium.
type SeverityIndicators struct {
	Critical []string `yaml:"critical"`
	High     []string `yaml:"high"`
	Medium   []string `yaml:"medium"`
}

type CategoryKnowledge struct {
	Category           domain.RiskCategory `yaml:"category"`
	DefaultExplanation string              `yaml:"default_explanation"`
	Patterns           []PatternSpec       `yaml:"patterns"`
	Explanations       []Explanation       `yaml:"explanations"`
	Mitigation         []string            `yaml:"mitigation"`
}

// PatternSpec is one risk indicator. NotFollowedBy rejects a match when the text
// right after it matches that expression.
type PatternSpec struct {
	Phrase        string `yaml:"phrase"`
	Regex         string `yaml:"regex"`
	NotFollowedBy string `yaml:"not_followed_by"`
}

type Explanation struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text"`
}

type StandardClause struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

func ParseKnowledgeBase(raw []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("decode risk knowledge base: %w", err)
	}
	return &kb, nil
}

var defaultKnowledge = sync.OnceValues(func() (*KnowledgeBase, error) {
	return ParseKnowledgeBase(embeddedKnowledge)
})

// DefaultKnowledgeBase returns the embedded knowledge base, parsed once per process.
// Callers must treat the result as read-only.
func DefaultKnowledgeBase() (*KnowledgeBase, error) {
	return defaultKnowledge()
}
