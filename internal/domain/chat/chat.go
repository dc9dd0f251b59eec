package chat

import (
	"time"

	apperrors "github.com/campuspool/carpool/pkg/errors"
)

// Conversation is the single chat thread bound to a ride. The ride link is
// nullable in storage so history survives ride deletion.
type Conversation struct {
	ID        int64     `json:"conversation_id"`
	RideID    *int64    `json:"ride_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a (conversation, user) pair. Membership is granted when a user
// creates the ride or has a request accepted, and is never revoked.
type Member struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
}

// Message is an immutable chat message
type Message struct {
	ID             int64     `json:"message_id"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	ConversationID int64     `json:"conversation_id"`
}

// MaxContentLen bounds message content.
const MaxContentLen = 1000

// ValidateContent checks message content bounds.
func ValidateContent(content string) error {
	if content == "" {
		return apperrors.Validation("Message content is required", nil)
	}
	if len(content) > MaxContentLen {
		return apperrors.Validation("Message cannot exceed 1000 characters", nil)
	}
	return nil
}
