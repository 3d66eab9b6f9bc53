package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/innovate-ai/voxagent/types"
)

// ConversationLog reads and writes session dialogue.
type ConversationLog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewConversationLog wraps db.
func NewConversationLog(db *gorm.DB, logger *zap.Logger) *ConversationLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationLog{
		db:     db,
		logger: logger.With(zap.String("component", "conversation_log")),
	}
}

// GetOrCreate fetches the session's conversation, creating it on first
// contact. An existing conversation keeps its original agent type.
func (l *ConversationLog) GetOrCreate(ctx context.Context, sessionID, agentType string) (*Conversation, error) {
	var conv Conversation
	err := l.db.WithContext(ctx).First(&conv, "id = ?", sessionID).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.ErrPersistence, "failed to load conversation").WithCause(err)
	}

	conv = Conversation{ID: sessionID, AgentType: agentType}
	if err := l.db.WithContext(ctx).Create(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with another request for the same session.
			if err := l.db.WithContext(ctx).First(&conv, "id = ?", sessionID).Error; err == nil {
				return &conv, nil
			}
		}
		return nil, types.NewError(types.ErrPersistence, "failed to create conversation").WithCause(err)
	}

	l.logger.Info("conversation started",
		zap.String("session_id", sessionID),
		zap.String("agent_type", agentType))
	return &conv, nil
}

// AppendExchange records one user turn and the assistant's reply.
func (l *ConversationLog) AppendExchange(ctx context.Context, sessionID, userText, assistantText string) error {
	messages := []Message{
		{ConversationID: sessionID, Role: "user", Content: userText},
		{ConversationID: sessionID, Role: "assistant", Content: assistantText},
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&messages).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).Where("id = ?", sessionID).
			Update("updated_at", tx.NowFunc()).Error
	})
	if err != nil {
		return types.NewError(types.ErrPersistence, "failed to append exchange").WithCause(err)
	}
	return nil
}

// History returns the session's messages oldest first.
func (l *ConversationLog) History(ctx context.Context, sessionID string) ([]Message, error) {
	var messages []Message
	err := l.db.WithContext(ctx).
		Where("conversation_id = ?", sessionID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to load history").WithCause(err)
	}
	return messages, nil
}

// Recent returns the most recently active conversations.
func (l *ConversationLog) Recent(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	var conversations []Conversation
	err := l.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, types.NewError(types.ErrPersistence, "failed to list conversations").WithCause(err)
	}
	return conversations, nil
}

// DeleteConversation removes a conversation and its messages.
func (l *ConversationLog) DeleteConversation(ctx context.Context, sessionID string) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", sessionID).Delete(&Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Conversation{}, "id = ?", sessionID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewError(types.ErrNotFound, "conversation not found")
	}
	if err != nil {
		return types.NewError(types.ErrPersistence, "failed to delete conversation").WithCause(err)
	}
	return nil
}
