package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"size:100;not null" json:"title"`
	Body             string     `gorm:"type:text;not null" json:"body"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User             User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	AcceptedAnswerID *uuid.UUID `gorm:"type:uuid" json:"accepted_answer_id"`
	Tags             []Tag      `gorm:"many2many:question_tags" json:"tags"`
	Answers          []Answer   `json:"answers,omitempty"`
	ViewCount        int64      `gorm:"not null;default:0" json:"view_count"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID, err = uuid.NewV7()
	}
	return
}

// Link is the in-app path notifications use to point at the question.
func (q *Question) Link() string {
	return QuestionLink(q.ID)
}

func QuestionLink(id uuid.UUID) string {
	return "/question/" + id.String()
}
