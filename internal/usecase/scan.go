package usecase

import (
	"errors"

	"docvault-backend/internal/entity"
)

type Scan interface {
	// CheckDocument отправляет содержимое документа модели и возвращает вердикт.
	// Политика fail-open: вердикт не бывает nil — при любой ошибке возвращается
	// {isSafe: true, warnings: []} вместе с ошибкой, описывающей причину.
	CheckDocument(content, fileName, fileType string) (*entity.ScanVerdict, error)
}

var (
	ErrRateLimited    = errors.New("model gateway rate limit exceeded")
	ErrQuotaExhausted = errors.New("model gateway quota exhausted")
)
