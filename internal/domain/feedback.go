package domain

import "time"

// Sentiment is the aggregate feedback label for a session
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNegative   Sentiment = "negative"
	SentimentNeutral    Sentiment = "neutral"
	SentimentNoFeedback Sentiment = "no_feedback"
)

// sentimentThreshold is the minimum ratio a side must reach before the
// session is labeled positive or negative.
const sentimentThreshold = 0.3

// FeedbackStatistics is a derived snapshot over a session's assistant
// messages. It is always recomputable as a pure function of the message
// list; ComputeFeedbackStatistics is the single source of truth for both
// the incremental-update path and explicit recalculation.
type FeedbackStatistics struct {
	Positive               int       `json:"positive" bson:"positive"`
	Negative               int       `json:"negative" bson:"negative"`
	Unset                  int       `json:"unset" bson:"unset"`
	TotalAssistantMessages int       `json:"total_assistant_messages" bson:"total_assistant_messages"`
	PositiveRatio          float64   `json:"positive_ratio" bson:"positive_ratio"`
	NegativeRatio          float64   `json:"negative_ratio" bson:"negative_ratio"`
	Overall                Sentiment `json:"overall_feedback" bson:"overall_feedback"`
	LastUpdated            time.Time `json:"last_updated" bson:"last_updated"`
}

// ComputeFeedbackStatistics folds the message list into a statistics
// snapshot. Assistant messages whose feedback field is present but neither
// up nor down count as unset; messages never touched by feedback (no field
// at all) are excluded from the unset count, distinguishing "never rated"
// from "explicitly cleared".
func ComputeFeedbackStatistics(messages []Message) FeedbackStatistics {
	stats := FeedbackStatistics{LastUpdated: time.Now().UTC()}

	for _, m := range messages {
		if m.Role != RoleAssistant {
			continue
		}
		stats.TotalAssistantMessages++
		switch {
		case m.Feedback == nil:
			// never rated
		case *m.Feedback == RatingUp:
			stats.Positive++
		case *m.Feedback == RatingDown:
			stats.Negative++
		default:
			stats.Unset++
		}
	}

	if stats.TotalAssistantMessages == 0 {
		stats.Overall = SentimentNoFeedback
		return stats
	}

	total := float64(stats.TotalAssistantMessages)
	stats.PositiveRatio = float64(stats.Positive) / total
	stats.NegativeRatio = float64(stats.Negative) / total

	switch {
	case stats.PositiveRatio > stats.NegativeRatio && stats.PositiveRatio > sentimentThreshold:
		stats.Overall = SentimentPositive
	case stats.NegativeRatio > stats.PositiveRatio && stats.NegativeRatio > sentimentThreshold:
		stats.Overall = SentimentNegative
	default:
		stats.Overall = SentimentNeutral
	}

	return stats
}
