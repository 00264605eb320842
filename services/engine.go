package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"defense-schedule/config"
	"defense-schedule/models"

	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Storage - объектное хранилище, которым пользуется движок
type Storage interface {
	ObjectOpener
	ObjectLister
	UploadFile(ctx context.Context, bucket, objectPath string, reader io.Reader, size int64, contentType string) error
}

// GeneratedOrder описывает один сформированный порядок дня
type GeneratedOrder struct {
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	FileName  string `json:"fileName"`
	LocalPath string `json:"localPath,omitempty"`
	ObjectKey string `json:"objectKey,omitempty"`
}

// Engine связывает разбор расписания, порядки дня и проверку файлов студентов
type Engine struct {
	sources      *config.Sources
	source       WorkbookSource
	storage      Storage
	targetBucket string
	generator    *DayOrderGenerator
}

// NewEngine создаёт движок. storage может быть nil, если хранилище не используется.
func NewEngine(sources *config.Sources, source WorkbookSource, storage Storage, targetBucket string) *Engine {
	return &Engine{
		sources:      sources,
		source:       source,
		storage:      storage,
		targetBucket: targetBucket,
		generator:    NewDayOrderGenerator(),
	}
}

// Sources возвращает конфигурацию источников
func (e *Engine) Sources() *config.Sources {
	return e.sources
}

// ParseSchedule разбирает расписание из настроенного источника
func (e *Engine) ParseSchedule(ctx context.Context) ([]models.DaySchedule, error) {
	return NewScheduleParser(e.source, e.sources).Parse(ctx)
}

// ParseScheduleAt разбирает расписание из другого источника с теми же таблицами тем
func (e *Engine) ParseScheduleAt(ctx context.Context, location string) ([]models.DaySchedule, error) {
	sources := *e.sources
	sources.Schedule = location
	return NewScheduleParser(e.source, &sources).Parse(ctx)
}

// GenerateDayOrders формирует по два порядка дня на каждый день.
// Файлы сохраняются в dir, если это включено, и загружаются в хранилище под общим префиксом запуска.
func (e *Engine) GenerateDayOrders(ctx context.Context, days []models.DaySchedule, dir string) ([]GeneratedOrder, error) {
	upload := e.sources.UploadOrders && e.storage != nil
	if e.sources.UploadOrders && e.storage == nil {
		log.Println("Хранилище не настроено, порядки дня не будут загружены")
	}
	if e.sources.SaveOrdersToDisk {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	runID := uuid.NewString()
	orders := make([]GeneratedOrder, 0, 2*len(days))
	for i := range days {
		day := &days[i]
		rendered := []struct {
			kind     string
			generate func(*models.DaySchedule) ([]byte, error)
		}{
			{CommissionOrderName, e.generator.GenerateCommission},
			{PublicOrderName, e.generator.GeneratePublic},
		}

		for _, r := range rendered {
			data, err := r.generate(day)
			if err != nil {
				return nil, fmt.Errorf("%s (%s): %w", r.kind, day.Date, err)
			}
			order := GeneratedOrder{Date: day.Date, Kind: r.kind, FileName: DayOrderFileName(r.kind, day.Date)}

			if e.sources.SaveOrdersToDisk {
				order.LocalPath = filepath.Join(dir, order.FileName)
				if err := os.WriteFile(order.LocalPath, data, 0644); err != nil {
					return nil, fmt.Errorf("failed to save %s: %w", order.FileName, err)
				}
			}
			if upload {
				order.ObjectKey = fmt.Sprintf("day-orders/%s/%s", runID, order.FileName)
				if err := e.storage.UploadFile(ctx, e.targetBucket, order.ObjectKey, bytes.NewReader(data), int64(len(data)), xlsxContentType); err != nil {
					return nil, fmt.Errorf("failed to upload %s: %w", order.FileName, err)
				}
			}
			orders = append(orders, order)
		}
	}
	return orders, nil
}

// MissingFiles проверяет папку с материалами и возвращает работы дня с недостающими файлами
func (e *Engine) MissingFiles(ctx context.Context, day *models.DaySchedule) ([]models.StudentWork, error) {
	if e.sources.Contents == "" {
		return nil, errors.New("contents folder is not configured")
	}
	var lister ObjectLister
	if e.storage != nil {
		lister = e.storage
	}
	paths, err := ListFiles(ctx, lister, e.sources.Contents)
	if err != nil {
		return nil, err
	}
	return NewStudentFileVerifier(day).FindWorksWithMissingFiles(paths), nil
}

// FindDay ищет день по дате
func FindDay(days []models.DaySchedule, date string) (*models.DaySchedule, bool) {
	for i := range days {
		if days[i].Date == date {
			return &days[i], true
		}
	}
	return nil, false
}
