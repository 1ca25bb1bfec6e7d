package cockroach

import (
	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"

	"github.com/jmoiron/sqlx"
)

type AuditLog struct {
	db *sqlx.DB
}

func NewAuditLog(db *sqlx.DB) repo.AuditLog {
	return &AuditLog{
		db: db,
	}
}

func (a *AuditLog) AddRecord(event *entity.AuditEvent) error {
	query := `INSERT INTO audit_log (event_id, event_type, user_id, document_id, file_name, occurred_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (event_id) DO NOTHING`
	_, err := a.db.Exec(
		query,
		event.EventID,
		event.Type,
		event.UserID,
		event.DocumentID,
		event.FileName,
		event.OccurredAt,
	)
	return err
}
