package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderAI   MessageSender = "ai"
)

type ChatSession struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	MessageCount int        `gorm:"not null;default:0" json:"message_count"`
	ArchiveKey   string     `gorm:"size:512" json:"archive_key,omitempty"`
	IsArchived   bool       `gorm:"not null;default:false" json:"is_archived"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ChatMessage struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_user_course_ts" json:"user_id"`
	CourseID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_user_course_ts" json:"course_id"`
	Content          string         `gorm:"type:text;not null" json:"content"`
	Sender           MessageSender  `gorm:"type:varchar(10);not null" json:"sender"`
	Timestamp        time.Time      `gorm:"not null;index:idx_messages_user_course_ts" json:"timestamp"`
	TokensUsed       *int           `json:"tokens_used,omitempty"`
	RetrievalContext datatypes.JSON `gorm:"type:jsonb" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ConversationPair is one user turn and the assistant reply that followed it,
// used to rebuild recent history for prompt construction.
type ConversationPair struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}
