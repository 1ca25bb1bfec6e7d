package http

import (
	"errors"
	"fmt"
	"net/http"

	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Share — публичный резолвер ссылок: авторизация не требуется,
// токен является единственным пропуском
type Share struct {
	documentUseCase usecase.Document
}

func NewShare(documentUseCase usecase.Document) *Share {
	return &Share{
		documentUseCase: documentUseCase,
	}
}

func (s *Share) Configure(server *echo.Group) {
	server.GET("/:token", s.Resolve)
	server.GET("/:token/download", s.Download)
}

func (s *Share) Resolve(c echo.Context) error {
	document, err := s.documentUseCase.ResolveShare(c.Param("token"))
	switch {
	case errors.Is(err, usecase.ErrShareUnavailable):
		// Несуществующая и истёкшая ссылка снаружи неразличимы
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Ссылка недоступна или истекла",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при разрешении публичной ссылки: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"file_name":  document.FileName,
		"file_type":  document.FileType,
		"file_size":  document.FileSize,
		"expires_at": document.ShareExpiresAt,
	})
}

func (s *Share) Download(c echo.Context) error {
	document, err := s.documentUseCase.ResolveShare(c.Param("token"))
	switch {
	case errors.Is(err, usecase.ErrShareUnavailable):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Ссылка недоступна или истекла",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при разрешении публичной ссылки: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}

	var downloadQuery struct {
		Inline bool `query:"inline"`
	}
	_ = utils.ReadQuery(c, &downloadQuery)

	file, err := s.documentUseCase.GetShareFile(document)
	if err != nil {
		c.Logger().Errorf("Ошибка при получении файла из хранилища: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Не удалось получить файл",
		})
	}
	defer func() { _ = file.Close() }()

	disposition := "attachment"
	if downloadQuery.Inline {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`%s; filename=%q`, disposition, document.FileName))
	return c.Stream(http.StatusOK, document.FileType, file)
}
