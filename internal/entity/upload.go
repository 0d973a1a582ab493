package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload records an image pushed to object storage so unreferenced files can be reclaimed.
type Upload struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
