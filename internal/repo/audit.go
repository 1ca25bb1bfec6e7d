package repo

import (
	"context"

	"docvault-backend/internal/entity"
)

type AuditEventRepository interface {
	// PublishAuditEvent публикует событие аудита
	PublishAuditEvent(ctx context.Context, event *entity.AuditEvent) error
	// SubscribeAuditEvents возвращает канал событий аудита. Канал закрывается
	// при отмене контекста.
	SubscribeAuditEvents(ctx context.Context) (<-chan *entity.AuditEvent, error)
}

type AuditLog interface {
	// AddRecord сохраняет событие аудита в журнал
	AddRecord(event *entity.AuditEvent) error
}
