package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/botify/storebot/backend/internal/model/chat"
)

// turnRecord maps a turn onto the conversation table shared with earlier deployments.
type turnRecord struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;index:idx_conversation_user_ts,priority:1"`
	Role      string    `gorm:"column:role;not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Timestamp time.Time `gorm:"column:timestamp;index:idx_conversation_user_ts,priority:2"`
}

func (turnRecord) TableName() string {
	return "conversation"
}

func (r turnRecord) toTurn() chat.Turn {
	return chat.Turn{
		ID:             strconv.FormatUint(uint64(r.ID), 10),
		ConversationID: r.UserID,
		Role:           chat.Role(r.Role),
		Content:        r.Message,
		CreatedAt:      r.Timestamp,
	}
}

// GormStore persists turns in a SQL database through gorm.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore migrates the conversation table and returns a Store backed by db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&turnRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate conversation table: %w", err)
	}
	return &GormStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Append inserts a turn row.
func (s *GormStore) Append(ctx context.Context, conversationID string, role chat.Role, content string) (chat.Turn, error) {
	if err := validateTurn(conversationID, role); err != nil {
		return chat.Turn{}, err
	}

	record := turnRecord{
		UserID:    conversationID,
		Role:      string(role),
		Message:   content,
		Timestamp: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return chat.Turn{}, fmt.Errorf("failed to save turn: %w", err)
	}
	return record.toTurn(), nil
}

// RecentHistory reads the newest rows first and reverses them into chronological order.
// Rows are ordered by their auto-increment id, so a clock stepping backwards
// cannot reorder a conversation.
func (s *GormStore) RecentHistory(ctx context.Context, conversationID string, limit int) ([]chat.Turn, error) {
	if conversationID == "" {
		return nil, ErrConversationRequired
	}

	query := s.db.WithContext(ctx).
		Where("user_id = ?", conversationID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []turnRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	turns := make([]chat.Turn, len(records))
	for i, record := range records {
		turns[len(records)-1-i] = record.toTurn()
	}
	return turns, nil
}
