package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a two-party thread, optionally about one listing.
// The participant pair is stored normalized (UserOneID sorts before UserTwoID)
// so the composite unique index enforces one conversation per pair and scope.
// ItemID is uuid.Nil for general conversations; keeping the column non-null
// makes the zero scope participate in the uniqueness guarantee.
type Conversation struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserOneID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_scope" json:"-"`
	UserTwoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_scope" json:"-"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_scope" json:"-"`
	LastMessage string    `gorm:"type:text;default:''" json:"last_message"`

	UserOne User  `gorm:"foreignkey:UserOneID" json:"-"`
	UserTwo User  `gorm:"foreignkey:UserTwoID" json:"-"`
	Item    *Item `gorm:"foreignkey:ItemID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

// NormalizePair orders a participant pair so lookups are symmetric.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}
