package usecase

import (
	"errors"
	"io"

	"docvault-backend/internal/entity"
)

type Document interface {
	// UploadDocument проводит загрузку через проверку модели: валидация,
	// извлечение текста, скан, гейт и сохранение. Вердикт возвращается
	// и при успехе, и при блокировке (вместе с ErrUnsafeDocument).
	UploadDocument(document *entity.Document) (int, *entity.ScanVerdict, error)
	// GetDocuments возвращает документы пользователя, сначала новые
	GetDocuments(userID int) ([]*entity.Document, error)
	// GenerateShareLink выпускает новый токен публичной ссылки на 24 часа,
	// безусловно заменяя предыдущий
	GenerateShareLink(documentID, userID int) (*entity.ShareLink, error)
	// DeleteDocument удаляет документ владельца: сначала блоб, затем запись
	DeleteDocument(documentID, userID int) error
	// ResolveShare возвращает документ по токену, если ссылка ещё действует.
	// Несуществующий и истёкший токен неразличимы: оба дают ErrShareUnavailable.
	ResolveShare(token string) (*entity.Document, error)
	// GetShareFile возвращает содержимое файла по действующей публичной ссылке
	GetShareFile(document *entity.Document) (io.ReadCloser, error)
}

var (
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrUnsafeDocument     = errors.New("document contains leaked credentials")
	ErrForbidden          = errors.New("document does not belong to this user")
	ErrShareUnavailable   = errors.New("share link is unavailable or expired")
)
