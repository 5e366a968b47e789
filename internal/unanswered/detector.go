package unanswered

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// lowScoreThreshold: below this average candidate score the retrieval is
// considered too weak to have grounded an answer.
const lowScoreThreshold = 0.3

// minQuestionLength: anything this short is noise, not a loggable question.
const minQuestionLength = 3

// Exchange captures one question/answer cycle for after-the-fact review.
type Exchange struct {
	SessionID     string
	Question      string
	EnhancedQuery string
	Answer        string

	DomainRelated bool
	Greeting      bool
	SourceCount   int

	ResultCount int
	AvgScore    float64
	SearchErr   error
}

// Detector decides, after an answer is produced, whether the exchange
// should be recorded for human review.
type Detector struct {
	sink    Sink
	phrases []string
}

// NewDetector creates a detector. phrases is the fixed set of
// "cannot answer" formulations recognized in generated answers.
func NewDetector(sink Sink, phrases []string) *Detector {
	return &Detector{sink: sink, phrases: phrases}
}

// Evaluate logs the exchange when every logging condition holds. Append
// failures are swallowed and reported diagnostically; evaluation never
// fails the request.
func (d *Detector) Evaluate(ex Exchange) {
	if !d.ShouldLog(ex) {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		SessionID: ex.SessionID,
		Question:  ex.Question,
		Reason:    d.Classify(ex),
		Metadata: map[string]any{
			"avg_score":       ex.AvgScore,
			"retrieval_count": ex.ResultCount,
			"enhanced_query":  ex.EnhancedQuery,
			"has_sources":     ex.SourceCount > 0,
		},
	}
	if ex.SearchErr != nil {
		entry.Metadata["search_error"] = ex.SearchErr.Error()
	}

	if err := d.sink.Append(entry); err != nil {
		log.Warn().Err(err).Str("session_id", ex.SessionID).Msg("failed to log unanswered question")
		return
	}
	log.Info().Str("session_id", ex.SessionID).Str("reason", string(entry.Reason)).Msg("logged unanswered question")
}

// ShouldLog reports whether all logging conditions hold: the question was
// domain-relevant, not a greeting, has non-trivial content, the answer
// matches a cannot-answer phrasing, and no sources were attached.
func (d *Detector) ShouldLog(ex Exchange) bool {
	question := strings.TrimSpace(ex.Question)
	if !ex.DomainRelated || ex.Greeting {
		return false
	}
	// Length in characters, not bytes; Arabic runs two bytes per letter.
	if utf8.RuneCountInString(question) <= minQuestionLength {
		return false
	}
	if ex.SourceCount > 0 {
		return false
	}
	return d.cannotAnswer(ex.Answer)
}

// Classify selects the reason code by priority: a retrieval error beats
// emptiness, emptiness beats weak scores.
func (d *Detector) Classify(ex Exchange) Reason {
	switch {
	case ex.SearchErr != nil:
		return ReasonSearchError
	case ex.ResultCount == 0:
		return ReasonNoResults
	case ex.AvgScore < lowScoreThreshold:
		return ReasonLowScore
	default:
		return ReasonInsufficient
	}
}

func (d *Detector) cannotAnswer(answer string) bool {
	for _, phrase := range d.phrases {
		if strings.Contains(answer, phrase) {
			return true
		}
	}
	return false
}
