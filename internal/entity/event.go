package entity

import "time"

type AuditEventType string

const (
	UploadAccepted  AuditEventType = "upload_accepted"
	UploadBlocked   AuditEventType = "upload_blocked"
	ShareCreated    AuditEventType = "share_created"
	ShareDownloaded AuditEventType = "share_downloaded"
	DocumentDeleted AuditEventType = "document_deleted"
)

// AuditEvent публикуется в Kafka лучшими усилиями и персистится отдельным воркером
type AuditEvent struct {
	EventID    string         `json:"-" msgpack:"event_id"`
	Type       AuditEventType `json:"type" msgpack:"type"`
	UserID     int            `json:"-" msgpack:"user_id"`
	DocumentID int            `json:"document_id" msgpack:"document_id"`
	FileName   string         `json:"file_name" msgpack:"file_name"`
	OccurredAt time.Time      `json:"-" msgpack:"occurred_at"`
}
