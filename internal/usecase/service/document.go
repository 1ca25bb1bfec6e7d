package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"docvault-backend/internal/entity"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/usecase"
	"docvault-backend/pkg/retry"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	// Не более 10 МиБ на файл
	maxFileSize = 10 << 20
	// Для PDF модели отдаётся base64-префикс сырых байтов
	pdfContentLimit = 5000
	// Публичная ссылка живёт 24 часа
	shareTTL = 24 * time.Hour
)

// allowedFileTypes — допустимые заявленные MIME-типы загрузки
var allowedFileTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"image/jpeg":      true,
	"image/png":       true,
}

type Document struct {
	documentRepo repo.Document
	scanUseCase  usecase.Scan
	auditRepo    repo.AuditEventRepository
}

// NewDocument создаёт usecase документов. auditRepo может быть nil —
// тогда события аудита не публикуются.
func NewDocument(documentRepo repo.Document, scanUseCase usecase.Scan, auditRepo repo.AuditEventRepository) usecase.Document {
	return &Document{
		documentRepo: documentRepo,
		scanUseCase:  scanUseCase,
		auditRepo:    auditRepo,
	}
}

func (d *Document) UploadDocument(document *entity.Document) (int, *entity.ScanVerdict, error) {
	// Валидация до любых обращений к модели и хранилищу
	if !allowedFileTypes[document.FileType] {
		return 0, nil, usecase.ErrFileTypeNotAllowed
	}
	if document.FileSize > maxFileSize {
		return 0, nil, usecase.ErrFileTooLarge
	}

	rawBytes, err := io.ReadAll(document.RawBytes)
	if err != nil {
		return 0, nil, err
	}
	document.FileSize = int64(len(rawBytes))
	if document.FileSize > maxFileSize {
		return 0, nil, usecase.ErrFileTooLarge
	}

	// Скан работает по принципу fail-open: ошибка транспорта или шлюза
	// модели никогда не блокирует загрузку
	content := extractContent(rawBytes, document.FileName, document.FileType)
	verdict, err := d.scanUseCase.CheckDocument(content, document.FileName, document.FileType)
	if err != nil {
		log.Errorf("скан файла %q завершился ошибкой, пропускаем без блокировки: %v", document.FileName, err)
	}

	// Гейт: блокируем только явно небезопасный вердикт с предупреждениями
	if !verdict.IsSafe && len(verdict.Warnings) > 0 {
		d.publishAuditEvent(entity.UploadBlocked, document.UserID, 0, document.FileName)
		return 0, verdict, usecase.ErrUnsafeDocument
	}

	// Путь в хранилище: id пользователя + время загрузки, коллизии
	// исключаются временной меткой, а не хэшем содержимого
	document.StoragePath = fmt.Sprintf("%d/%d_%s", document.UserID, time.Now().UnixMilli(), document.FileName)
	// Тип содержимого для хранилища определяем по самим байтам
	document.FileType = mimetype.Detect(rawBytes).String()
	document.IsSafe = true
	document.RawBytes = bytes.NewBuffer(rawBytes)

	documentID, err := d.documentRepo.AddDocument(document)
	if err != nil {
		return 0, verdict, err
	}
	d.publishAuditEvent(entity.UploadAccepted, document.UserID, documentID, document.FileName)
	return documentID, verdict, nil
}

func (d *Document) GetDocuments(userID int) ([]*entity.Document, error) {
	return d.documentRepo.GetDocuments(userID)
}

func (d *Document) GenerateShareLink(documentID, userID int) (*entity.ShareLink, error) {
	document, err := d.documentRepo.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	if document.UserID != userID {
		return nil, usecase.ErrForbidden
	}

	token := uuid.New().String()
	expiresAt := time.Now().Add(shareTTL)
	if err := d.documentRepo.SetShareToken(documentID, token, expiresAt); err != nil {
		return nil, err
	}
	d.publishAuditEvent(entity.ShareCreated, userID, documentID, document.FileName)
	return &entity.ShareLink{
		Token:     token,
		URL:       "/share/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

func (d *Document) DeleteDocument(documentID, userID int) error {
	document, err := d.documentRepo.GetDocument(documentID)
	if err != nil {
		return err
	}
	if document.UserID != userID {
		return usecase.ErrForbidden
	}
	if err := d.documentRepo.DeleteDocument(document); err != nil {
		return err
	}
	d.publishAuditEvent(entity.DocumentDeleted, userID, documentID, document.FileName)
	return nil
}

func (d *Document) ResolveShare(token string) (*entity.Document, error) {
	document, err := d.documentRepo.GetDocumentByShareToken(token)
	if err != nil {
		// Несуществующий токен наружу неотличим от истёкшего
		if errors.Is(err, repo.ErrDocumentNotFound) {
			return nil, usecase.ErrShareUnavailable
		}
		return nil, err
	}
	// Истёкшие токены не вычищаются, а просто считаются недействительными
	if !document.HasValidShare(time.Now()) {
		return nil, usecase.ErrShareUnavailable
	}
	return document, nil
}

func (d *Document) GetShareFile(document *entity.Document) (io.ReadCloser, error) {
	file, err := d.documentRepo.GetDocumentFile(document)
	if err != nil {
		return nil, err
	}
	d.publishAuditEvent(entity.ShareDownloaded, document.UserID, document.ID, document.FileName)
	return file, nil
}

// publishAuditEvent публикует событие аудита лучшими усилиями: сбой публикации
// логируется и не влияет на основной поток
func (d *Document) publishAuditEvent(eventType entity.AuditEventType, userID, documentID int, fileName string) {
	if d.auditRepo == nil {
		return
	}
	event := &entity.AuditEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		DocumentID: documentID,
		FileName:   fileName,
		OccurredAt: time.Now(),
	}
	go func() {
		err := retry.Retry(func() error {
			return d.auditRepo.PublishAuditEvent(context.Background(), event)
		})
		if err != nil {
			log.Errorf("не удалось опубликовать событие аудита %s: %v", eventType, err)
		}
	}()
}

// extractContent формирует текстовое представление файла для модели:
// текстовые файлы уходят целиком, PDF — base64-префиксом первых 5000 символов,
// изображения — только именем файла
func extractContent(rawBytes []byte, fileName, fileType string) string {
	switch {
	case fileType == "text/plain":
		return string(rawBytes)
	case fileType == "application/pdf":
		encoded := base64.StdEncoding.EncodeToString(rawBytes)
		if len(encoded) > pdfContentLimit {
			encoded = encoded[:pdfContentLimit]
		}
		return encoded
	default:
		return fileName
	}
}
