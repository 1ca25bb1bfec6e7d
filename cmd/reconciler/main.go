package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"docvault-backend/internal/repo"
	"docvault-backend/internal/repo/cockroach"
	"docvault-backend/pkg/connector"
	"docvault-backend/pkg/retry"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Reconciler периодически сверяет блоб-хранилище с таблицей документов.
// Двухшаговые сохранение и удаление не транзакционны, поэтому возможны
// блобы без записей и записи без блобов. Сверка только отчитывается о
// расхождениях и ничего не удаляет.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	interval := time.Hour
	if v := os.Getenv("RECONCILE_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Неверный RECONCILE_INTERVAL: %v", err)
		}
		interval = parsed
	}

	dbConn, err := connector.GetCockroachConnector(os.Getenv("DB_CONNECT_DSN"))
	if err != nil {
		log.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Errorf("Ошибка при закрытии соединения с базой данных: %v", err)
		}
	}()

	minioClient, err := connector.GetMinioConnector(
		os.Getenv("MINIO_ENDPOINT"),
		os.Getenv("MINIO_ACCESS_KEY"),
		os.Getenv("MINIO_SECRET_KEY"),
		os.Getenv("MINIO_USE_SSL") == "true",
	)
	if err != nil {
		log.Fatalf("Ошибка при подключении к MinIO: %v", err)
	}

	documentRepo, err := cockroach.NewDocument(dbConn, minioClient)
	if err != nil {
		log.Fatalf("Ошибка при создании репозитория Document: %v", err)
	}

	log.Infof("Reconciler запущен, интервал сверки %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Первая сверка сразу после старта
	sweep(ctx, documentRepo)
	for {
		select {
		case <-ctx.Done():
			log.Info("Reconciler успешно остановлен")
			return
		case <-ticker.C:
			sweep(ctx, documentRepo)
		}
	}
}

func sweep(ctx context.Context, documentRepo repo.Document) {
	var paths, objects []string
	err := retry.Retry(func() error {
		var err error
		paths, err = documentRepo.GetAllStoragePaths()
		if err != nil {
			return err
		}
		objects, err = documentRepo.GetStorageObjects(ctx)
		return err
	})
	if err != nil {
		log.Errorf("Сверка не удалась: %v", err)
		return
	}

	known := make(map[string]bool, len(paths))
	for _, path := range paths {
		known[path] = true
	}
	stored := make(map[string]bool, len(objects))
	for _, key := range objects {
		stored[key] = true
	}

	orphanBlobs := 0
	for _, key := range objects {
		if !known[key] {
			orphanBlobs++
			log.Warnf("Блоб без записи: %s", key)
		}
	}
	danglingRows := 0
	for _, path := range paths {
		if !stored[path] {
			danglingRows++
			log.Warnf("Запись без блоба: %s", path)
		}
	}
	log.Infof("Сверка завершена: записей %d, блобов %d, блобов-сирот %d, висячих записей %d",
		len(paths), len(objects), orphanBlobs, danglingRows)
}
