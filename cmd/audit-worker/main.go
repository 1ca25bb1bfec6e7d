package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"docvault-backend/internal/repo/cockroach"
	"docvault-backend/internal/repo/kafka"
	"docvault-backend/pkg/connector"
	"docvault-backend/pkg/goosehelper"
	"docvault-backend/pkg/retry"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func init() {
	// Загружаем переменные окружения
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
	// Настройка контекста для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	dbConnectDSN := os.Getenv("DB_CONNECT_DSN")
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Fatal("KAFKA_BROKERS не задан")
	}

	dbConn, err := connector.GetCockroachConnector(dbConnectDSN)
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Errorf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()

	auditLogRepo := cockroach.NewAuditLog(dbConn)
	auditEventRepo, err := kafka.NewAuditEventKafkaRepository(strings.Split(brokers, ","))
	if err != nil {
		log.Fatalf("Ошибка при подключении к Kafka: %v", err)
	}

	events, err := auditEventRepo.SubscribeAuditEvents(ctx)
	if err != nil {
		log.Fatalf("Ошибка при подписке на события аудита: %v", err)
	}

	log.Info("Audit worker запущен")
	for event := range events {
		err := retry.Retry(func() error {
			return auditLogRepo.AddRecord(event)
		})
		if err != nil {
			log.Errorf("Не удалось сохранить событие аудита %s: %v", event.EventID, err)
		}
	}
	log.Info("Audit worker успешно остановлен")
}
