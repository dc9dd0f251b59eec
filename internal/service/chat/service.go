package chat

import (
	"context"
	"database/sql"

	"github.com/campuspool/carpool/internal/domain/chat"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
	"github.com/campuspool/carpool/pkg/websocket"
)

// Publisher fans a persisted event out to the subscribers of a ride topic.
// Delivery is fire-and-forget: the hub satisfies this in production.
type Publisher interface {
	Publish(topic string, event websocket.Event)
}

// Querier is the slice of *sql.DB / *sql.Tx the conversation helpers need,
// so accept-request can run them inside its own transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// EnsureConversationTx returns the conversation for a ride, creating it if
// absent. The insert-then-select pattern is race-safe under the unique
// constraint on ride_id.
func EnsureConversationTx(ctx context.Context, q Querier, rideID int64) (int64, error) {
	_, err := q.ExecContext(ctx,
		`INSERT INTO conversations (ride_id) VALUES ($1) ON CONFLICT (ride_id) DO NOTHING`, rideID,
	)
	if err != nil {
		return 0, err
	}

	var conversationID int64
	err = q.QueryRowContext(ctx,
		`SELECT conversation_id FROM conversations WHERE ride_id = $1`, rideID,
	).Scan(&conversationID)
	if err != nil {
		return 0, err
	}
	return conversationID, nil
}

// AddMemberTx adds a user to a conversation. A duplicate insert is a silent
// no-op, so concurrent accepts on the same ride cannot lose a member.
func AddMemberTx(ctx context.Context, q Querier, conversationID, userID int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO conversation_members (conversation_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, conversationID, userID)
	return err
}

// Service owns the ride-scoped chat: membership checks, message persistence
// and the realtime fan-out.
type Service struct {
	db        *sql.DB
	publisher Publisher
	logger    *logger.Logger
}

// NewService creates a chat service
func NewService(db *sql.DB, publisher Publisher, logger *logger.Logger) *Service {
	return &Service{db: db, publisher: publisher, logger: logger}
}

// EnsureConversation returns the conversation for a ride, creating one if
// none exists.
func (s *Service) EnsureConversation(ctx context.Context, rideID int64) (int64, error) {
	id, err := EnsureConversationTx(ctx, s.db, rideID)
	if err != nil {
		return 0, apperrors.Internal("Failed to ensure conversation", err)
	}
	return id, nil
}

// AddMember idempotently adds a user to a conversation.
func (s *Service) AddMember(ctx context.Context, conversationID, userID int64) error {
	if err := AddMemberTx(ctx, s.db, conversationID, userID); err != nil {
		return apperrors.Internal("Failed to add member", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the ride's conversation.
// Used by the websocket layer to authorize topic joins.
func (s *Service) IsMember(ctx context.Context, userID, rideID int64) (bool, error) {
	var member bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM conversation_members cm
			JOIN conversations c ON c.conversation_id = cm.conversation_id
			WHERE c.ride_id = $1 AND cm.user_id = $2
		)
	`, rideID, userID).Scan(&member)
	if err != nil {
		return false, apperrors.Internal("Failed to check membership", err)
	}
	return member, nil
}

// conversationFor resolves the ride's conversation and the caller's
// membership in one read.
func (s *Service) conversationFor(ctx context.Context, userID, rideID int64) (int64, error) {
	var (
		conversationID int64
		member         bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.conversation_id,
		       EXISTS (
		           SELECT 1 FROM conversation_members cm
		           WHERE cm.conversation_id = c.conversation_id AND cm.user_id = $2
		       )
		FROM conversations c
		WHERE c.ride_id = $1
	`, rideID, userID).Scan(&conversationID, &member)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return 0, apperrors.Internal("Failed to load conversation", err)
	}
	if !member {
		return 0, apperrors.ErrNotMember
	}
	return conversationID, nil
}

// SendMessage persists a message from a conversation member, then broadcasts
// it to the ride's topic. Persistence must succeed first; a failed broadcast
// is logged and never surfaced, the message stays retrievable.
func (s *Service) SendMessage(ctx context.Context, userID, rideID int64, content string) (*chat.Message, error) {
	if err := chat.ValidateContent(content); err != nil {
		return nil, err
	}

	conversationID, err := s.conversationFor(ctx, userID, rideID)
	if err != nil {
		return nil, err
	}

	var senderName string
	err = s.db.QueryRowContext(ctx,
		`SELECT full_name FROM users WHERE user_id = $1`, userID,
	).Scan(&senderName)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load sender", err)
	}

	msg := chat.Message{
		Content:        content,
		SenderID:       userID,
		SenderName:     senderName,
		ConversationID: conversationID,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO messages (content, sender_id, conversation_id)
		VALUES ($1, $2, $3)
		RETURNING message_id, sent_at
	`, content, userID, conversationID).Scan(&msg.ID, &msg.SentAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to store message", err)
	}

	s.publisher.Publish(websocket.RideTopic(rideID), websocket.Event{
		Type: "message",
		Data: map[string]interface{}{
			"message_id":  msg.ID,
			"content":     msg.Content,
			"sender_name": msg.SenderName,
			"sent_at":     msg.SentAt,
		},
	})

	s.logger.Info("Message sent",
		logger.Int64("ride_id", rideID),
		logger.Int64("message_id", msg.ID),
		logger.Int64("sender_id", userID),
	)
	return &msg, nil
}

// ListMessages returns the conversation history in non-decreasing sent_at
// order, ties broken by message identity. Same membership gate as send.
func (s *Service) ListMessages(ctx context.Context, userID, rideID int64) ([]chat.Message, error) {
	conversationID, err := s.conversationFor(ctx, userID, rideID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.message_id, m.content, m.sent_at, m.sender_id, u.full_name, m.conversation_id
		FROM messages m
		JOIN users u ON u.user_id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.sent_at, m.message_id
	`, conversationID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list messages", err)
	}
	defer rows.Close()

	out := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		err := rows.Scan(&m.ID, &m.Content, &m.SentAt, &m.SenderID, &m.SenderName, &m.ConversationID)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list messages", err)
	}
	return out, nil
}
