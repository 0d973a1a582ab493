package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Link      *string    `gorm:"type:text;index" json:"link,omitempty"`
	IsRead    bool       `gorm:"default:false;not null" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
