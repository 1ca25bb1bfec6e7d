package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	delivery "docvault-backend/internal/delivery/http"
	"docvault-backend/internal/delivery/http/utils"
	"docvault-backend/internal/repo"
	"docvault-backend/internal/repo/cockroach"
	"docvault-backend/internal/repo/kafka"
	"docvault-backend/internal/usecase/service"
	"docvault-backend/pkg/connector"
	"docvault-backend/pkg/goosehelper"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}

	// Выполнить миграции при старте
	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	DBConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	goosehelper.MigrateUp(DBConn.DB, "./migrations")
	if err := DBConn.Close(); err != nil {
		log.Fatalf("Ошибка при закрытии соединения с базой данных: %v", err)
	}
}

func main() {
	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	jwtSecret := os.Getenv("JWT_SECRET")
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}

	// cockroach
	DBConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		err := DBConn.Close()
		if err != nil {
			log.Fatalf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()

	// minio
	minioClient, err := connector.GetMinioConnector(
		os.Getenv("MINIO_ENDPOINT"),
		os.Getenv("MINIO_ACCESS_KEY"),
		os.Getenv("MINIO_SECRET_KEY"),
		os.Getenv("MINIO_USE_SSL") == "true",
	)
	if err != nil {
		log.Fatalf("Ошибка при подключении к MinIO: %v", err)
	}

	// репозитории (подключение к базе данных и хранилищам)
	userRepo := cockroach.NewUser(DBConn)
	documentRepo, err := cockroach.NewDocument(DBConn, minioClient)
	if err != nil {
		log.Fatalf("Ошибка при создании репозитория Document: %v", err)
	}
	// Kafka опциональна: без брокеров события аудита не публикуются
	var auditRepo repo.AuditEventRepository
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		auditRepo, err = kafka.NewAuditEventKafkaRepository(strings.Split(brokers, ","))
		if err != nil {
			log.Fatalf("Ошибка при подключении к Kafka: %v", err)
		}
	} else {
		log.Info("KAFKA_BROKERS не задан, аудит отключен")
	}

	// usecase (бизнес-логика)
	scanUseCase := service.NewScan(
		os.Getenv("LLM_GATEWAY_URL"),
		os.Getenv("LLM_API_KEY"),
		os.Getenv("LLM_MODEL"),
	)
	documentUseCase := service.NewDocument(documentRepo, scanUseCase, auditRepo)
	userUseCase := service.NewUser(userRepo)

	// delivery (обработка запросов)
	cookieManager := utils.NewCookieManager(false)
	authManager := utils.NewAuthManager([]byte(jwtSecret), userRepo, time.Hour*24*365)
	oauth := utils.NewOAuth(
		os.Getenv("OAUTH_CLIENT_ID"),
		os.Getenv("OAUTH_CLIENT_SECRET"),
		os.Getenv("OAUTH_REDIRECT_URL"),
	)
	userDelivery := delivery.NewUser(userUseCase, authManager, cookieManager, oauth)
	uploadDelivery := delivery.NewUpload(documentUseCase, authManager)
	documentDelivery := delivery.NewDocument(documentUseCase, authManager)
	scanDelivery := delivery.NewScan(scanUseCase)
	shareDelivery := delivery.NewShare(documentUseCase)

	// REST API
	echoServer := echo.New()

	// Не более 10 МБ
	echoServer.Use(middleware.BodyLimit("10M"))
	// gzip на прием
	echoServer.Use(middleware.Decompress())
	// gzip на отдачу
	echoServer.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	// request id
	echoServer.Use(middleware.RequestID())

	// CORS для фронтенда (эндпоинт скана переопределяет его на открытый)
	echoServer.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, allowedOrigin)
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowMethods, strings.Join([]string{
				http.MethodGet,
				http.MethodPut,
				http.MethodPost,
				http.MethodDelete,
				http.MethodOptions,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowHeaders, strings.Join([]string{
				echo.HeaderOrigin,
				echo.HeaderAccept,
				echo.HeaderXRequestedWith,
				echo.HeaderContentType,
				echo.HeaderAccessControlRequestMethod,
				echo.HeaderAccessControlRequestHeaders,
				echo.HeaderCookie,
			}, ","))
			ctx.Response().Header().Set(echo.HeaderAccessControlAllowCredentials, "true")
			ctx.Response().Header().Set(echo.HeaderAccessControlMaxAge, "86400")
			return next(ctx)
		}
	})

	// Endpoints
	api := echoServer.Group("/api")
	// users
	users := api.Group("/user")
	userDelivery.Configure(users)
	// uploads
	uploads := api.Group("/upload")
	uploadDelivery.Configure(uploads)
	// documents
	documents := api.Group("/documents")
	documentDelivery.Configure(documents)
	// scan
	scan := api.Group("/scan")
	scanDelivery.Configure(scan)
	// публичные ссылки
	share := echoServer.Group("/share")
	shareDelivery.Configure(share)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()
	go func(server *echo.Echo) {
		if err := server.Start("0.0.0.0:80"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatalf("Сервер завершил свою работу по причине: %v\n", err)
		}
	}(echoServer)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(10)*time.Second,
	)
	defer cancel()
	if err := echoServer.Shutdown(shutdownCtx); err != nil {
		echoServer.Logger.Fatalf("Во время выключения сервера возникла ошибка: %s\n", err)
	}
}
