package main

import (
	"context"
	"log"
	"os"

	"defense-schedule/config"
	"defense-schedule/services"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	created, err := config.WriteDefaultSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to prepare sources file: %v", err)
	}
	if created {
		log.Printf("Создан файл %s. Укажите в нём пути или ссылки на расписание и таблицы тем и запустите программу ещё раз.", cfg.SourcesFile)
		return
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}

	// Хранилище подключаем, только если оно явно задано в окружении
	var storage services.Storage
	var objects services.ObjectOpener
	if os.Getenv("MINIO_ENDPOINT") != "" {
		minioService, err := services.NewMinIOService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
		storage = minioService
		objects = minioService
	}

	downloader := services.NewYandexDiskDownloader(cfg.YandexDiskAPI, cfg.DownloadTimeout)
	engine := services.NewEngine(sources, services.NewResourceResolver(objects, downloader), storage, cfg.TargetBucket)

	ctx := context.Background()
	days, err := engine.ParseSchedule(ctx)
	if err != nil {
		log.Fatalf("Failed to parse schedule: %v", err)
	}
	log.Printf("Разобрано дней защит: %d", len(days))

	orders, err := engine.GenerateDayOrders(ctx, days, cfg.OrdersDir)
	if err != nil {
		log.Fatalf("Failed to generate day orders: %v", err)
	}
	for _, order := range orders {
		switch {
		case order.LocalPath != "":
			log.Printf("Сохранён %s", order.LocalPath)
		case order.ObjectKey != "":
			log.Printf("Загружен %s/%s", cfg.TargetBucket, order.ObjectKey)
		}
	}

	if sources.Contents == "" {
		return
	}
	for i := range days {
		missing, err := engine.MissingFiles(ctx, &days[i])
		if err != nil {
			log.Fatalf("Failed to verify student files: %v", err)
		}
		for _, work := range missing {
			log.Printf("%s: не хватает файлов у %s (отчёт=%t, презентация=%t, отзыв=%t, отзыв консультанта=%t, рецензия=%t)",
				days[i].Date, work.StudentName,
				work.HasReport, work.HasPresentation, work.HasSupervisorReview, work.HasConsultantReview, work.HasReviewerReview)
		}
	}
}
