package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"gorm.io/gorm"
)

var ErrEmptyBody = errors.New("message body cannot be empty")

// MessageStore is the append-only log of messages per conversation.
// Sender membership is the conversation service's responsibility.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append inserts a message at the end of the conversation's log.
func (s *MessageStore) Append(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	message := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}

	return &message, nil
}

// ListForConversation returns messages oldest first, ties broken by id so
// the order is stable for same-timestamp appends.
func (s *MessageStore) ListForConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
