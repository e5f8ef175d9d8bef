package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConditionNew     = "NEW"
	ConditionLikeNew = "LIKE_NEW"
	ConditionGood    = "GOOD"
	ConditionFair    = "FAIR"
	ConditionPoor    = "POOR"
)

const (
	ModeSell  = "SELL"
	ModeTrade = "TRADE"
	ModeBoth  = "BOTH"
)

type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Price       float64   `gorm:"type:numeric(12,2);default:0" json:"price"`
	Condition   string    `gorm:"size:20;not null" json:"condition"`
	Images      []string  `gorm:"serializer:json" json:"images"`
	Mode        string    `gorm:"size:10;not null;default:'SELL'" json:"mode"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	User User `gorm:"foreignkey:UserID" json:"seller"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
