package http

import (
	"errors"
	"net/http"

	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/entity"
	"docvault-backend/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Scan struct {
	scanUseCase usecase.Scan
}

func NewScan(scanUseCase usecase.Scan) *Scan {
	return &Scan{
		scanUseCase: scanUseCase,
	}
}

func (s *Scan) Configure(server *echo.Group) {
	// Эндпоинт скана открыт для любых origin, в отличие от остального API
	server.Use(openCORS)
	server.POST("/", s.Scan)
	server.OPTIONS("/", s.Preflight)
}

// openCORS разрешает запросы с любого origin
func openCORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
		c.Response().Header().Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
		c.Response().Header().Set(echo.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")
		return next(c)
	}
}

func (s *Scan) Preflight(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (s *Scan) Scan(c echo.Context) error {
	var scanRequest entity.ScanRequest
	err := utils.ReadJSON(c, &scanRequest)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Неверный формат запроса",
		})
	}

	verdict, err := s.scanUseCase.CheckDocument(scanRequest.Content, scanRequest.FileName, scanRequest.FileType)
	// Деградация отражается в статусе, но полезная нагрузка остаётся fail-open:
	// клиент, читающий только isSafe, ведёт себя корректно без ветвления по статусу
	switch {
	case errors.Is(err, usecase.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":    "Шлюз модели ограничил частоту запросов",
			"isSafe":   true,
			"warnings": []entity.ScanWarning{},
		})
	case errors.Is(err, usecase.ErrQuotaExhausted):
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":    "Исчерпана квота шлюза модели",
			"isSafe":   true,
			"warnings": []entity.ScanWarning{},
		})
	case err != nil:
		c.Logger().Errorf("Ошибка при обращении к шлюзу модели: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":    "Не удалось проверить документ",
			"isSafe":   true,
			"warnings": []entity.ScanWarning{},
		})
	}

	return c.JSON(http.StatusOK, verdict)
}
