package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
	ErrUserNotFound         = errors.New("user not found")
)

// ConversationStore owns conversation identity: one row per normalized
// participant pair and scope, guarded by a composite unique index.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func (s *ConversationStore) withResolved(db *gorm.DB) *gorm.DB {
	return db.Preload("UserOne").Preload("UserTwo").Preload("Item").Preload("Item.User")
}

// Find looks up the conversation between two users for the given scope.
// Argument order is irrelevant; itemID == uuid.Nil matches only the
// unscoped conversation between the pair.
func (s *ConversationStore) Find(ctx context.Context, userA, userB, itemID uuid.UUID) (*models.Conversation, error) {
	one, two := models.NormalizePair(userA, userB)

	var conversation models.Conversation
	err := s.withResolved(s.db.WithContext(ctx)).
		Where("user_one_id = ? AND user_two_id = ? AND item_id = ?", one, two, itemID).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	return &conversation, nil
}

// GetByID fetches a conversation with participants and scope resolved.
func (s *ConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.withResolved(s.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	return &conversation, nil
}

// Create inserts a new conversation for the pair and scope. A concurrent
// first-contact race surfaces as gorm.ErrDuplicatedKey, which callers
// resolve by re-fetching the surviving row.
func (s *ConversationStore) Create(ctx context.Context, userA, userB, itemID uuid.UUID) (*models.Conversation, error) {
	if userA == userB {
		return nil, ErrSelfConversation
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", []uuid.UUID{userA, userB}).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count != 2 {
		return nil, ErrUserNotFound
	}

	one, two := models.NormalizePair(userA, userB)
	conversation := models.Conversation{
		UserOneID: one,
		UserTwoID: two,
		ItemID:    itemID,
	}
	if err := s.db.WithContext(ctx).Create(&conversation).Error; err != nil {
		return nil, err
	}

	return s.GetByID(ctx, conversation.ID)
}

// TouchLastMessage refreshes the denormalized summary and bumps updated_at,
// which is what sorts conversation lists by recency.
func (s *ConversationStore) TouchLastMessage(ctx context.Context, id uuid.UUID, summary string) error {
	result := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message", summary)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// ListForUser returns the user's conversations, most recently active first.
func (s *ConversationStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.withResolved(s.db.WithContext(ctx)).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	return conversations, nil
}
