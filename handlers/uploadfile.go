package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"defense-schedule/models"
	"defense-schedule/services"

	"github.com/gin-gonic/gin"
)

// ObjectStore - операции хранилища, нужные обработке загруженных расписаний
type ObjectStore interface {
	ObjectExistsInBucket(ctx context.Context, bucket, objectPath string) (bool, error)
	UploadFile(ctx context.Context, bucket, objectPath string, reader io.Reader, size int64, contentType string) error
}

type UploadFileHandler struct {
	store        ObjectStore
	engine       *services.Engine
	cacheService *services.ScheduleCache
	sourceBucket string
	targetBucket string
}

func NewUploadFileHandler(store ObjectStore, engine *services.Engine, cache *services.ScheduleCache, sourceBucket, targetBucket string) *UploadFileHandler {
	return &UploadFileHandler{
		store:        store,
		engine:       engine,
		cacheService: cache,
		sourceBucket: sourceBucket,
		targetBucket: targetBucket,
	}
}

type FileItem struct {
	ObjectPath string `json:"object_path" binding:"required"`
}

type ProcessFilesRequest struct {
	Files []FileItem `json:"files" binding:"required,min=1"`
}

type ProcessFileResult struct {
	FileName   string `json:"file_name"`
	SourceFile string `json:"source_file"`
	TargetFile string `json:"target_file"`
	Days       int    `json:"days"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

func (h *UploadFileHandler) ProcessFile(c *gin.Context) {
	log.Println("UploadFileHandler - ProcessFile")

	var req ProcessFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	results := make([]ProcessFileResult, 0, len(req.Files))
	successCount := 0
	failureCount := 0

	for _, fileItem := range req.Files {
		result := h.processOneFile(c.Request.Context(), fileItem)
		results = append(results, result)

		if result.Success {
			successCount++
		} else {
			failureCount++
		}
	}

	statusCode := http.StatusOK
	if failureCount > 0 && successCount == 0 {
		statusCode = http.StatusInternalServerError
	} else if failureCount > 0 {
		statusCode = http.StatusMultiStatus
	}

	c.JSON(statusCode, gin.H{
		"message":       fmt.Sprintf("processed %d files: %d succeeded, %d failed", len(req.Files), successCount, failureCount),
		"total":         len(req.Files),
		"succeeded":     successCount,
		"failed":        failureCount,
		"results":       results,
		"source_bucket": h.sourceBucket,
		"target_bucket": h.targetBucket,
	})
}

func (h *UploadFileHandler) processOneFile(ctx context.Context, fileItem FileItem) ProcessFileResult {
	xlsxPath := strings.TrimPrefix(fileItem.ObjectPath, "/")
	result := ProcessFileResult{
		FileName:   path.Base(xlsxPath),
		SourceFile: xlsxPath,
	}

	log.Printf("Проверка существования файла в %s: %s", h.sourceBucket, xlsxPath)
	exists, err := h.store.ObjectExistsInBucket(ctx, h.sourceBucket, xlsxPath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to check file existence: %v", err)
		log.Printf("Ошибка проверки существования %s: %v", xlsxPath, err)
		return result
	}
	if !exists {
		result.Error = fmt.Sprintf("file not found in bucket: %s", xlsxPath)
		log.Printf("Файл не найден в %s: %s", h.sourceBucket, xlsxPath)
		return result
	}

	// Разбираем расписание прямо из бакета, темы берутся из настроенных источников
	location := services.ObjectURI(h.sourceBucket, xlsxPath)
	log.Printf("Разбор расписания: %s", location)
	days, err := h.engine.ParseScheduleAt(ctx, location)
	if err != nil {
		result.Error = fmt.Sprintf("failed to parse file: %v", err)
		log.Printf("Ошибка разбора %s: %v", xlsxPath, err)
		return result
	}
	result.Days = len(days)

	jsonData, err := json.MarshalIndent(days, "", "  ")
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal schedule: %v", err)
		return result
	}

	jsonPath := strings.TrimSuffix(xlsxPath, path.Ext(xlsxPath)) + ".json"
	result.TargetFile = jsonPath

	log.Printf("Загрузка JSON в %s: %s", h.targetBucket, jsonPath)
	err = h.store.UploadFile(ctx, h.targetBucket, jsonPath, bytes.NewReader(jsonData), int64(len(jsonData)), "application/json")
	if err != nil {
		result.Error = fmt.Sprintf("failed to upload json: %v", err)
		log.Printf("Ошибка загрузки %s: %v", jsonPath, err)
		return result
	}

	// Инвалидируем кэш для этого расписания
	h.cacheService.Delete(location)
	if location == h.engine.Sources().Schedule {
		log.Println("Обновлено основное расписание")
	}

	log.Printf("Файл успешно обработан: %s -> %s", xlsxPath, jsonPath)
	result.Success = true
	return result
}
