package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatRecord is one question/answer exchange prepared for archival.
type ChatRecord struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	CourseID      string    `json:"course_id"`
	Query         string    `json:"query"`
	Answer        string    `json:"answer"`
	Timestamp     time.Time `json:"timestamp"`
	ContextChunks []string  `json:"context_chunks"`
	MaterialsUsed []string  `json:"materials_used"`
}

type archiveEnvelope struct {
	SessionID  string     `json:"session_id"`
	ArchivedAt time.Time  `json:"archived_at"`
	Data       ChatRecord `json:"data"`
}

// SessionMarker records where a session's archive landed.
type SessionMarker interface {
	MarkArchived(ctx context.Context, sessionID uuid.UUID, archiveKey string) error
}

// Archiver writes chat exchanges to blob storage for later analysis.
type Archiver struct {
	client   *Client
	sessions SessionMarker
}

func NewArchiver(client *Client, sessions SessionMarker) *Archiver {
	return &Archiver{client: client, sessions: sessions}
}

// ArchiveChat writes the exchange under the session's month-partitioned
// archive key and marks the session archived.
func (a *Archiver) ArchiveChat(ctx context.Context, sessionID uuid.UUID, record ChatRecord) error {
	now := time.Now().UTC()
	key := fmt.Sprintf("chat-archives/%04d/%02d/%s.json", now.Year(), int(now.Month()), sessionID)

	data, err := json.MarshalIndent(archiveEnvelope{
		SessionID:  sessionID.String(),
		ArchivedAt: now,
		Data:       record,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %v", err)
	}

	metadata := map[string]string{
		"session_id":  sessionID.String(),
		"archived_at": now.Format(time.RFC3339),
	}
	if err := a.client.Put(ctx, key, data, "application/json", metadata); err != nil {
		return err
	}
	return a.sessions.MarkArchived(ctx, sessionID, key)
}
