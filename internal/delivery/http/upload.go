package http

import (
	"errors"
	"net/http"

	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/entity"
	"docvault-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Upload struct {
	documentUseCase usecase.Document
	authManager     utils.Auth
}

func NewUpload(documentUseCase usecase.Document, authManager utils.Auth) *Upload {
	return &Upload{
		documentUseCase: documentUseCase,
		authManager:     authManager,
	}
}

func (u *Upload) Configure(server *echo.Group) {
	server.POST("/", u.Upload)
}

func (u *Upload) Upload(c echo.Context) error {
	userID, err := u.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}

	// Извлекаем файл
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Файл не найден: " + err.Error(),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ошибка чтения файла: " + err.Error(),
		})
	}
	defer func() { _ = src.Close() }()

	document := &entity.Document{
		UserID:   userID,
		FileName: file.Filename,
		FileType: file.Header.Get("Content-Type"),
		FileSize: file.Size,
		RawBytes: src,
	}

	documentID, verdict, err := u.documentUseCase.UploadDocument(document)
	switch {
	case errors.Is(err, usecase.ErrFileTypeNotAllowed):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный тип файла. Допустимые типы: PDF, TXT, JPEG, PNG",
		})
	case errors.Is(err, usecase.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{
			"error": "Файл превышает допустимый размер 10 МБ",
		})
	case errors.Is(err, usecase.ErrUnsafeDocument):
		// Загрузка заблокирована: показываем пользователю список предупреждений
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":    "В файле обнаружены утечки учетных данных",
			"warnings": verdict.Warnings,
		})
	case err != nil:
		c.Logger().Errorf("Ошибка сохранения файла: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ошибка сохранения файла",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"document_id": documentID,
		"verdict":     verdict,
	})
}
