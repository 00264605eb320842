package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort      string
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	CacheTTL        time.Duration
	PresignedURLTTL time.Duration
	DownloadTimeout time.Duration
	Environment     string
	SourceBucket    string // Бакет, куда загружают исходные XLSX файлы расписаний
	TargetBucket    string // Бакет для JSON и сгенерированных порядков дня
	SourcesFile     string // YAML с путями/ссылками на расписание и темы ВКР
	YandexDiskAPI   string // Точка входа API публичных ресурсов Яндекс.Диска
	OrdersDir       string
}

func Load() *Config {
	cacheMinutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	presignedMinutes, _ := strconv.Atoi(getEnv("PRESIGNED_URL_TTL_MINUTES", "15"))
	downloadSeconds, _ := strconv.Atoi(getEnv("DOWNLOAD_TIMEOUT_SECONDS", "60"))
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		MinIOEndpoint:   getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:     useSSL,
		CacheTTL:        time.Duration(cacheMinutes) * time.Minute,
		PresignedURLTTL: time.Duration(presignedMinutes) * time.Minute,
		DownloadTimeout: time.Duration(downloadSeconds) * time.Second,
		Environment:     getEnv("ENVIRONMENT", "development"),
		SourceBucket:    getEnv("SOURCE_BUCKET", "file-upload"),
		TargetBucket:    getEnv("TARGET_BUCKET", "defense-schedules"),
		SourcesFile:     getEnv("SOURCES_FILE", "config/sources.yaml"),
		YandexDiskAPI:   getEnv("YANDEX_DISK_API", "https://cloud-api.yandex.net/v1/disk/public/resources/download"),
		OrdersDir:       getEnv("ORDERS_DIR", "Порядки дня"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
