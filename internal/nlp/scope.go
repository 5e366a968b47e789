package nlp

import (
	"strings"
	"unicode"

	"github.com/hfakhoury/majalla-chat/internal/domain"
)

// arabicRatioThreshold: a message counts as Arabic only when more than half
// of its alphabetic characters fall in the Arabic block.
const arabicRatioThreshold = 0.5

// Classifier decides whether an incoming message is a greeting, an
// in-domain content question, or out of scope.
type Classifier struct {
	rules *RuleSet
}

// NewClassifier creates a classifier over the given rule set.
func NewClassifier(rules *RuleSet) *Classifier {
	return &Classifier{rules: rules}
}

// IsArabicText reports whether the text is predominantly Arabic.
func (c *Classifier) IsArabicText(text string) bool {
	var arabic, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if r >= 0x0600 && r <= 0x06FF {
			arabic++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(arabic)/float64(letters) > arabicRatioThreshold
}

// IsGreeting reports whether the message matches the fixed greeting and
// small-talk pattern set. Greetings bypass retrieval and are in scope by
// policy, so they are never logged as unanswered.
func (c *Classifier) IsGreeting(message string) bool {
	q := strings.ToLower(strings.TrimSpace(message))
	for _, pattern := range c.rules.Greetings {
		if strings.Contains(q, pattern) {
			return true
		}
	}
	return false
}

// IsDomainRelated reports whether the message is relevant to the corpus.
// Retrieval results are positive evidence of relevance even when the
// keyword heuristics miss; the caller only declines when both the
// heuristics and the retrieval evidence agree on irrelevance.
func (c *Classifier) IsDomainRelated(message string, sources []domain.Source) bool {
	if len(sources) > 0 {
		return true
	}

	q := strings.ToLower(strings.TrimSpace(message))
	for _, terms := range [][]string{
		c.rules.DomainTerms,
		c.rules.ContentTerms,
		c.rules.CulturalTerms,
		c.rules.ConversationTerms,
	} {
		for _, term := range terms {
			if strings.Contains(q, term) {
				return true
			}
		}
	}
	return false
}
