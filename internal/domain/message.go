package domain

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Rating is a user-supplied quality rating on an assistant message
type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// Message is a single turn inside a session document.
//
// Feedback is tri-state: a nil pointer means the message was never rated
// (the field is absent from the stored document), a pointer to an empty
// rating means the rating was explicitly cleared, and a pointer to "up" or
// "down" is an actual rating. User messages never carry the field.
type Message struct {
	ID       string      `json:"id" bson:"id"`
	Role     MessageRole `json:"role" bson:"role"`
	Text     string      `json:"text" bson:"text"`
	Feedback *Rating     `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// Rated reports whether the message carries an up or down rating.
func (m Message) Rated() bool {
	return m.Feedback != nil && (*m.Feedback == RatingUp || *m.Feedback == RatingDown)
}
