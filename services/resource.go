package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ObjectOpener читает объекты хранилища (MinIOService)
type ObjectOpener interface {
	OpenObject(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error)
}

// ObjectLister перечисляет объекты хранилища (MinIOService)
type ObjectLister interface {
	ListAllObjectsInBucket(ctx context.Context, bucket, prefix string) ([]string, error)
}

// RemoteDownloader скачивает файл по абсолютной ссылке (YandexDiskDownloader)
type RemoteDownloader interface {
	Download(ctx context.Context, uri string) (io.ReadCloser, error)
}

// ResourceResolver превращает путь или ссылку в поток байт
type ResourceResolver struct {
	objects    ObjectOpener
	downloader RemoteDownloader
}

func NewResourceResolver(objects ObjectOpener, downloader RemoteDownloader) *ResourceResolver {
	return &ResourceResolver{objects: objects, downloader: downloader}
}

// IsAbsoluteURI - строка является корректной абсолютной ссылкой
func IsAbsoluteURI(location string) bool {
	u, err := url.Parse(location)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Open открывает ресурс: s3://bucket/key читается из хранилища,
// другие абсолютные ссылки скачиваются, всё остальное считается локальным путём.
func (r *ResourceResolver) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	location = strings.TrimSpace(location)
	if bucket, key, ok := ParseObjectURI(location); ok {
		if r.objects == nil {
			return nil, fmt.Errorf("object storage is not configured for %s", location)
		}
		return r.objects.OpenObject(ctx, bucket, key)
	}
	if IsAbsoluteURI(location) {
		if r.downloader == nil {
			return nil, fmt.Errorf("remote download is not configured for %s", location)
		}
		return r.downloader.Download(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	return f, nil
}

// LoadWorkbook открывает ресурс, читает книгу и закрывает поток при любом исходе
func (r *ResourceResolver) LoadWorkbook(ctx context.Context, location string) (*Workbook, error) {
	rc, err := r.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	wb, err := LoadWorkbook(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return wb, nil
}

// ListFiles перечисляет файлы папки: локальной или s3://bucket/prefix
func ListFiles(ctx context.Context, lister ObjectLister, location string) ([]string, error) {
	if bucket, prefix, ok := ParseObjectURI(location); ok {
		if lister == nil {
			return nil, errors.New("object storage is not configured")
		}
		keys, err := lister.ListAllObjectsInBucket(ctx, bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", location, err)
		}
		return keys, nil
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read dir %s: %w", location, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(location, entry.Name()))
	}
	return paths, nil
}
