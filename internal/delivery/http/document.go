package http

import (
	"errors"
	"net/http"
	"strconv"

	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Document struct {
	documentUseCase usecase.Document
	authManager     utils.Auth
}

func NewDocument(documentUseCase usecase.Document, authManager utils.Auth) *Document {
	return &Document{
		documentUseCase: documentUseCase,
		authManager:     authManager,
	}
}

func (d *Document) Configure(server *echo.Group) {
	server.GET("/", d.List)
	server.POST("/:id/share", d.GenerateShareLink)
	server.DELETE("/:id", d.Delete)
}

func (d *Document) List(c echo.Context) error {
	userID, err := d.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	documents, err := d.documentUseCase.GetDocuments(userID)
	if err != nil {
		c.Logger().Errorf("Ошибка при получении списка документов: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"documents": documents,
	})
}

func (d *Document) GenerateShareLink(c echo.Context) error {
	userID, err := d.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный идентификатор документа",
		})
	}
	shareLink, err := d.documentUseCase.GenerateShareLink(documentID, userID)
	switch {
	case errors.Is(err, repo.ErrDocumentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Документ не найден",
		})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "Документ принадлежит другому пользователю",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при создании публичной ссылки: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Произошла непредвиденная ошибка",
		})
	}
	return c.JSON(http.StatusOK, shareLink)
}

func (d *Document) Delete(c echo.Context) error {
	userID, err := d.authManager.CheckAuthFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Пользователь не авторизован",
		})
	}
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный идентификатор документа",
		})
	}
	err = d.documentUseCase.DeleteDocument(documentID, userID)
	switch {
	case errors.Is(err, repo.ErrDocumentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Документ не найден",
		})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "Документ принадлежит другому пользователю",
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при удалении документа: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ошибка при удалении документа",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Документ удален",
	})
}
