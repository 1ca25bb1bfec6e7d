package repo

import (
	"context"
	"errors"
	"io"
	"time"

	"docvault-backend/internal/entity"
)

type Document interface {
	// AddDocument загружает файл в блоб-хранилище и создаёт запись о документе.
	// Откат блоба при неудачной вставке записи не выполняется.
	AddDocument(document *entity.Document) (int, error)
	// GetDocument возвращает метаданные документа по ID, без файла
	GetDocument(id int) (*entity.Document, error)
	// GetDocuments возвращает документы пользователя, сначала новые
	GetDocuments(userID int) ([]*entity.Document, error)
	// GetDocumentByShareToken возвращает документ по токену публичной ссылки
	GetDocumentByShareToken(token string) (*entity.Document, error)
	// GetDocumentFile возвращает содержимое файла из блоб-хранилища
	GetDocumentFile(document *entity.Document) (io.ReadCloser, error)
	// SetShareToken безусловно заменяет токен и срок действия ссылки
	SetShareToken(documentID int, token string, expiresAt time.Time) error
	// DeleteDocument удаляет сначала блоб, затем запись. Если блоб удалить
	// не удалось, запись остаётся.
	DeleteDocument(document *entity.Document) error
	// GetAllStoragePaths возвращает пути всех записей (для сверки)
	GetAllStoragePaths() ([]string, error)
	// GetStorageObjects возвращает ключи всех объектов в бакете (для сверки)
	GetStorageObjects(ctx context.Context) ([]string, error)
}

var (
	ErrDocumentNotFound = errors.New("document not found")
)
