package dao

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Vansh983/ai-ta/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// A session stays active for one hour after it starts; the next message
// after that cuts a fresh session.
const sessionWindow = time.Hour

type ChatDAO struct {
	db *gorm.DB
}

func NewChatDAO(db *gorm.DB) *ChatDAO {
	return &ChatDAO{db: db}
}

// GetOrCreateActiveSession returns the user's open session for the course if
// one started within the session window, otherwise ends any stale open
// sessions and creates a new one.
func (d *ChatDAO) GetOrCreateActiveSession(ctx context.Context, userID, courseID uuid.UUID) (*model.ChatSession, error) {
	cutoff := time.Now().Add(-sessionWindow)

	var session model.ChatSession
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND ended_at IS NULL AND started_at >= ?", userID, courseID, cutoff).
		Order("started_at DESC").
		First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := d.EndUserSessions(ctx, userID, courseID); err != nil {
		return nil, err
	}
	session = model.ChatSession{
		UserID:    userID,
		CourseID:  courseID,
		StartedAt: time.Now(),
	}
	if err := d.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// EndUserSessions closes every open session the user has for the course.
func (d *ChatDAO) EndUserSessions(ctx context.Context, userID, courseID uuid.UUID) error {
	return d.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("user_id = ? AND course_id = ? AND ended_at IS NULL", userID, courseID).
		Update("ended_at", time.Now()).Error
}

// AddMessage appends a message to its session and bumps the session's
// message count in the same transaction.
func (d *ChatDAO) AddMessage(ctx context.Context, msg *model.ChatMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", msg.SessionID).
			UpdateColumn("message_count", gorm.Expr("message_count + 1")).Error
	})
}

// SaveExchange stores a question and its answer against the user's active
// session and returns that session's id. The retrieval context rides on the
// assistant message.
func (d *ChatDAO) SaveExchange(ctx context.Context, userID, courseID uuid.UUID, query, answer string, contextChunks []string) (uuid.UUID, error) {
	session, err := d.GetOrCreateActiveSession(ctx, userID, courseID)
	if err != nil {
		return uuid.Nil, err
	}

	if err := d.AddMessage(ctx, &model.ChatMessage{
		SessionID: session.ID,
		UserID:    userID,
		CourseID:  courseID,
		Content:   query,
		Sender:    model.SenderUser,
	}); err != nil {
		return uuid.Nil, err
	}

	var retrievalContext datatypes.JSON
	if len(contextChunks) > 0 {
		b, err := json.Marshal(contextChunks)
		if err != nil {
			return uuid.Nil, err
		}
		retrievalContext = datatypes.JSON(b)
	}
	if err := d.AddMessage(ctx, &model.ChatMessage{
		SessionID:        session.ID,
		UserID:           userID,
		CourseID:         courseID,
		Content:          answer,
		Sender:           model.SenderAI,
		RetrievalContext: retrievalContext,
	}); err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}

// RecentPairs returns the user's last n question/answer pairs for a course
// in chronological order, for prompt construction.
func (d *ChatDAO) RecentPairs(ctx context.Context, userID, courseID uuid.UUID, n int) ([]model.ConversationPair, error) {
	if n <= 0 {
		n = 3
	}

	var messages []model.ChatMessage
	if err := d.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("timestamp DESC").
		Limit(2 * n).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	// reverse back to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	pairs := make([]model.ConversationPair, 0, n)
	for i := 0; i < len(messages)-1; {
		if messages[i].Sender == model.SenderUser && messages[i+1].Sender == model.SenderAI {
			pairs = append(pairs, model.ConversationPair{
				User:      messages[i].Content,
				Assistant: messages[i+1].Content,
			})
			i += 2
		} else {
			i++
		}
	}
	if len(pairs) > n {
		pairs = pairs[len(pairs)-n:]
	}
	return pairs, nil
}

// History returns the user's most recent messages for a course, oldest
// first.
func (d *ChatDAO) History(ctx context.Context, userID, courseID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	var messages []model.ChatMessage
	if err := d.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkArchived records where a session's archive landed in blob storage.
func (d *ChatDAO) MarkArchived(ctx context.Context, sessionID uuid.UUID, archiveKey string) error {
	return d.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"archive_key": archiveKey,
			"is_archived": true,
		}).Error
}
