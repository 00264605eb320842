package main

import (
	"log"
	"time"

	"defense-schedule/config"
	"defense-schedule/handlers"
	"defense-schedule/middleware"
	"defense-schedule/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Start service")
	// Загружаем .env файл (игнорируем ошибку для продакшн)
	_ = godotenv.Load()

	cfg := config.Load()

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}

	log.Println("init services")
	minioService, err := services.NewMinIOService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	downloader := services.NewYandexDiskDownloader(cfg.YandexDiskAPI, cfg.DownloadTimeout)
	resolver := services.NewResourceResolver(minioService, downloader)
	engine := services.NewEngine(sources, resolver, minioService, cfg.TargetBucket)

	cacheService := services.NewScheduleCache(cfg.CacheTTL, 2*cfg.CacheTTL)

	log.Println("init handlers")
	scheduleHandler := handlers.NewScheduleHandler(engine, cacheService, minioService, cfg.SourceBucket, cfg.TargetBucket, cfg.OrdersDir)
	uploadFileHandler := handlers.NewUploadFileHandler(minioService, engine, cacheService, cfg.SourceBucket, cfg.TargetBucket)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Println("init router")
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})

		// Расписание защит
		schedule := api.Group("/schedule")
		schedule.GET("", scheduleHandler.GetSchedule)
		schedule.GET("/students.csv", scheduleHandler.GetStudentsCSV)
		schedule.GET("/files", scheduleHandler.GetScheduleFiles)
		schedule.GET("/days/:date/missing", scheduleHandler.GetMissingFiles)
		schedule.POST("/day-orders", scheduleHandler.GenerateDayOrders)

		api.POST("/cache/invalidate", scheduleHandler.InvalidateCache)

		// Вебхук загрузки файлов
		api.POST("/files_uploaded", uploadFileHandler.ProcessFile)
	}

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
