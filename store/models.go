package store

import "time"

// Conversation is one session's dialogue. Its primary key is the
// caller-supplied session ID so lookups need no extra index.
type Conversation struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	AgentType string    `gorm:"size:32" json:"agent_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message is one utterance within a conversation.
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"index;size:64" json:"conversation_id"`
	Role           string    `gorm:"size:16" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
