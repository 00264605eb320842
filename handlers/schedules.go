package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"defense-schedule/models"
	"defense-schedule/services"

	"github.com/gin-gonic/gin"
)

// FileStore - операции хранилища, нужные обработчикам расписания
type FileStore interface {
	ListFiles(ctx context.Context, bucket, prefix string) ([]models.ScheduleFile, error)
	GetPresignedURL(ctx context.Context, bucket, objectPath string) (*models.PresignedURLResponse, error)
}

type ScheduleHandler struct {
	engine       *services.Engine
	cacheService *services.ScheduleCache
	files        FileStore
	sourceBucket string
	targetBucket string
	outputDir    string
}

func NewScheduleHandler(engine *services.Engine, cache *services.ScheduleCache, files FileStore, sourceBucket, targetBucket, outputDir string) *ScheduleHandler {
	return &ScheduleHandler{
		engine:       engine,
		cacheService: cache,
		files:        files,
		sourceBucket: sourceBucket,
		targetBucket: targetBucket,
		outputDir:    outputDir,
	}
}

// days возвращает разобранное расписание из кэша или разбирает его заново
func (h *ScheduleHandler) days(c *gin.Context) ([]models.DaySchedule, bool, error) {
	location := h.engine.Sources().Schedule
	if cached, found := h.cacheService.Get(location); found {
		return cached, true, nil
	}

	days, err := h.engine.ParseSchedule(c.Request.Context())
	if err != nil {
		return nil, false, err
	}
	h.cacheService.Set(location, days)
	return days, false, nil
}

func respondParseError(c *gin.Context, err error) {
	log.Printf("Ошибка разбора расписания: %v", err)
	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrFormat) {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, models.ErrorResponse{
		Error:   "failed to parse schedule",
		Message: err.Error(),
	})
}

// GetSchedule возвращает дни защит
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	days, cached, err := h.days(c)
	if err != nil {
		respondParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   days,
		"cached": cached,
	})
}

// GetStudentsCSV выгружает работы студентов в CSV
func (h *ScheduleHandler) GetStudentsCSV(c *gin.Context) {
	days, _, err := h.days(c)
	if err != nil {
		respondParseError(c, err)
		return
	}

	data, err := services.ExportStudentsCSV(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to export students",
			Message: err.Error(),
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetMissingFiles возвращает работы дня, у которых не хватает файлов
func (h *ScheduleHandler) GetMissingFiles(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "date parameter is required",
		})
		return
	}

	days, _, err := h.days(c)
	if err != nil {
		respondParseError(c, err)
		return
	}

	day, found := services.FindDay(days, date)
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "day not found",
		})
		return
	}

	missing, err := h.engine.MissingFiles(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to verify student files",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date": day.Date,
		"data": missing,
	})
}

// GenerateDayOrders формирует порядки дня и возвращает ссылки на загруженные файлы
func (h *ScheduleHandler) GenerateDayOrders(c *gin.Context) {
	days, _, err := h.days(c)
	if err != nil {
		respondParseError(c, err)
		return
	}

	orders, err := h.engine.GenerateDayOrders(c.Request.Context(), days, h.outputDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to generate day orders",
			Message: err.Error(),
		})
		return
	}

	links := make([]*models.PresignedURLResponse, 0)
	if h.files != nil {
		for _, order := range orders {
			if order.ObjectKey == "" {
				continue
			}
			link, err := h.files.GetPresignedURL(c.Request.Context(), h.targetBucket, order.ObjectKey)
			if err != nil {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error:   "failed to generate download url",
					Message: err.Error(),
				})
				return
			}
			links = append(links, link)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"links": links,
	})
}

// GetScheduleFiles возвращает список файлов расписаний в бакете загрузки
func (h *ScheduleHandler) GetScheduleFiles(c *gin.Context) {
	if h.files == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "object storage is not configured",
		})
		return
	}

	files, err := h.files.ListFiles(c.Request.Context(), h.sourceBucket, c.Query("prefix"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list schedule files",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": files,
	})
}

// InvalidateCache удаляет кэш
func (h *ScheduleHandler) InvalidateCache(c *gin.Context) {
	h.cacheService.Flush()
	c.JSON(http.StatusOK, gin.H{
		"message": "cache invalidated successfully",
	})
}
