package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"defense-schedule/config"
	"defense-schedule/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Схема ссылок на объекты хранилища: s3://bucket/path/to/object
const objectScheme = "s3"

type MinIOService struct {
	client *minio.Client
	urlTTL time.Duration
}

func NewMinIOService(cfg *config.Config) (*MinIOService, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOService{
		client: client,
		urlTTL: cfg.PresignedURLTTL,
	}, nil
}

// ParseObjectURI разбирает s3://bucket/key. Для остальных строк ok == false.
func ParseObjectURI(location string) (bucket, key string, ok bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != objectScheme || u.Host == "" {
		return "", "", false
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), true
}

// ObjectURI собирает ссылку s3://bucket/key
func ObjectURI(bucket, key string) string {
	return fmt.Sprintf("%s://%s/%s", objectScheme, bucket, strings.TrimPrefix(key, "/"))
}

// ListFiles возвращает список xlsx/xls файлов в указанном префиксе бакета
func (s *MinIOService) ListFiles(ctx context.Context, bucket, prefix string) ([]models.ScheduleFile, error) {
	var files []models.ScheduleFile

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}

	for object := range s.client.ListObjects(ctx, bucket, opts) {
		if object.Err != nil {
			return nil, object.Err
		}

		// Игнорируем директории
		if strings.HasSuffix(object.Key, "/") {
			continue
		}

		lower := strings.ToLower(object.Key)
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
			continue
		}

		files = append(files, models.ScheduleFile{
			Name:         extractFileName(object.Key),
			Path:         object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
		})
	}

	return files, nil
}

// GetPresignedURL генерирует presigned URL для скачивания из указанного бакета
func (s *MinIOService) GetPresignedURL(ctx context.Context, bucket, objectPath string) (*models.PresignedURLResponse, error) {
	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", extractFileName(objectPath)))

	presignedURL, err := s.client.PresignedGetObject(ctx, bucket, objectPath, s.urlTTL, reqParams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned url: %w", err)
	}

	return &models.PresignedURLResponse{
		URL:       presignedURL.String(),
		ExpiresAt: time.Now().Add(s.urlTTL),
		FileName:  extractFileName(objectPath),
	}, nil
}

// ObjectExistsInBucket проверяет существование объекта в указанном бакете
func (s *MinIOService) ObjectExistsInBucket(ctx context.Context, bucket, objectPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, objectPath, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAllObjectsInBucket возвращает список всех объектов в указанном бакете с префиксом
func (s *MinIOService) ListAllObjectsInBucket(ctx context.Context, bucket, prefix string) ([]string, error) {
	var objects []string

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for object := range s.client.ListObjects(ctx, bucket, opts) {
		if object.Err != nil {
			return nil, object.Err
		}
		objects = append(objects, object.Key)
	}

	return objects, nil
}

// OpenObject открывает объект на чтение. Поток закрывает вызывающий.
func (s *MinIOService) OpenObject(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error) {
	log.Printf("Скачивание объекта из %s: %s", bucket, objectPath)
	object, err := s.client.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	// GetObject ленивый: ошибка доступа проявляется только при первом обращении
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return object, nil
}

// UploadFile загружает файл в указанный бакет
func (s *MinIOService) UploadFile(ctx context.Context, bucket, objectPath string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, objectPath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Вспомогательные функции
func extractFileName(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}
