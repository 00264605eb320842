package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"defense-schedule/config"
	"defense-schedule/models"
	"defense-schedule/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// writeSheet сохраняет один лист в xlsx
func writeSheet(t *testing.T, path, sheet string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				t.Fatalf("SetCellStr: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func scheduleRows(info string) [][]string {
	return [][]string{
		{"№", "ФИО", "Тема"},
		{},
		{"", "26 мая (понедельник)", "", "", "", "", "Председатель: Petrov P."},
		{"", "11:00, ауд. 3381", info, "", "", "", "Секретарь: Sidorova S."},
		{"1", "Ivanov Ivan", "Theme A", "Supervisor A", "Reviewer A", "", "Orlov O."},
		{"2", "Orlov Oleg", "Theme B", "Supervisor B", "Reviewer B"},
	}
}

// localObjects отдаёт объекты s3://bucket/key из локальной папки
type localObjects struct {
	dir      string
	uploaded map[string][]byte
}

func (l *localObjects) OpenObject(_ context.Context, bucket, objectPath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.dir, bucket, objectPath))
}

func (l *localObjects) ListAllObjectsInBucket(_ context.Context, bucket, prefix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.dir, bucket, prefix))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, prefix+entry.Name())
	}
	return keys, nil
}

func (l *localObjects) ObjectExistsInBucket(_ context.Context, bucket, objectPath string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.dir, bucket, objectPath))
	return err == nil, nil
}

func (l *localObjects) UploadFile(_ context.Context, bucket, objectPath string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	l.uploaded[bucket+"/"+objectPath] = data
	return nil
}

type stubFiles struct{}

func (stubFiles) ListFiles(_ context.Context, bucket, prefix string) ([]models.ScheduleFile, error) {
	return []models.ScheduleFile{{Name: "schedule.xlsx", Path: prefix + "schedule.xlsx"}}, nil
}

func (stubFiles) GetPresignedURL(_ context.Context, bucket, objectPath string) (*models.PresignedURLResponse, error) {
	return &models.PresignedURLResponse{URL: "https://minio/" + bucket + "/" + objectPath, FileName: filepath.Base(objectPath)}, nil
}

type testEnv struct {
	router  *gin.Engine
	objects *localObjects
	sources *config.Sources
	cache   *services.ScheduleCache
}

func newTestEnv(t *testing.T, info string) *testEnv {
	t.Helper()
	dir := t.TempDir()

	schedule := filepath.Join(dir, "schedule.xlsx")
	writeSheet(t, schedule, "Расписание", scheduleRows(info))

	objects := &localObjects{dir: dir, uploaded: make(map[string][]byte)}
	if err := os.MkdirAll(filepath.Join(dir, "file-upload", "2024"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	writeSheet(t, filepath.Join(dir, "file-upload", "2024", "schedule.xlsx"), "Расписание", scheduleRows(info))

	sources := &config.Sources{
		Schedule: schedule,
		Themes: map[string]string{
			"бакалавры техпрога": "",
			"магистры ПИ":        "",
		},
		UploadOrders: true,
	}
	engine := services.NewEngine(sources, services.NewResourceResolver(objects, nil), objects, "defense-schedules")
	cache := services.NewScheduleCache(time.Minute, time.Minute)

	scheduleHandler := NewScheduleHandler(engine, cache, stubFiles{}, "file-upload", "defense-schedules", filepath.Join(dir, "orders"))
	uploadHandler := NewUploadFileHandler(objects, engine, cache, "file-upload", "defense-schedules")

	router := gin.New()
	api := router.Group("/api/v1")
	group := api.Group("/schedule")
	group.GET("", scheduleHandler.GetSchedule)
	group.GET("/students.csv", scheduleHandler.GetStudentsCSV)
	group.GET("/files", scheduleHandler.GetScheduleFiles)
	group.GET("/days/:date/missing", scheduleHandler.GetMissingFiles)
	group.POST("/day-orders", scheduleHandler.GenerateDayOrders)
	api.POST("/cache/invalidate", scheduleHandler.InvalidateCache)
	api.POST("/files_uploaded", uploadHandler.ProcessFile)

	return &testEnv{router: router, objects: objects, sources: sources, cache: cache}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestGetSchedule(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 5006-02")

	w := env.do(t, http.MethodGet, "/api/v1/schedule", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data   []models.DaySchedule `json:"data"`
		Cached bool                 `json:"cached"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Cached || len(resp.Data) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if got := resp.Data[0].CommissionMeetings[0].StudentWorks; len(got) != 2 {
		t.Fatalf("expected 2 works, got %d", len(got))
	}

	w = env.do(t, http.MethodGet, "/api/v1/schedule", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Cached {
		t.Fatal("second request must be served from cache")
	}

	w = env.do(t, http.MethodPost, "/api/v1/cache/invalidate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d", w.Code)
	}
	if _, found := env.cache.Get(env.sources.Schedule); found {
		t.Fatal("cache must be empty after invalidation")
	}
}

func TestGetScheduleFormatError(t *testing.T) {
	env := newTestEnv(t, "бакалавры техпрога без кафедры")

	w := env.do(t, http.MethodGet, "/api/v1/schedule", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Message, "бакалавры техпрога без кафедры") {
		t.Fatalf("error must name the descriptor: %+v", resp)
	}
}

func TestGetScheduleMissingFile(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")
	env.sources.Schedule = filepath.Join(t.TempDir(), "missing.xlsx")

	w := env.do(t, http.MethodGet, "/api/v1/schedule", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetStudentsCSV(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")

	w := env.do(t, http.MethodGet, "/api/v1/schedule/students.csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("content type = %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Orlov Oleg") {
		t.Fatalf("csv misses a student:\n%s", w.Body.String())
	}
}

func TestGetMissingFiles(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")
	contents := t.TempDir()
	if err := os.WriteFile(filepath.Join(contents, "Ivanov-report.pdf"), []byte("%PDF"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	env.sources.Contents = contents

	w := env.do(t, http.MethodGet, "/api/v1/schedule/days/"+url.PathEscape("26 мая")+"/missing", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Date string               `json:"date"`
		Data []models.StudentWork `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "26 мая" || len(resp.Data) != 2 || !resp.Data[0].HasReport {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/api/v1/schedule/days/"+url.PathEscape("1 июня")+"/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown day status = %d", w.Code)
	}
}

func TestGenerateDayOrders(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")

	w := env.do(t, http.MethodPost, "/api/v1/schedule/day-orders", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data  []services.GeneratedOrder     `json:"data"`
		Links []models.PresignedURLResponse `json:"links"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 2 || len(resp.Links) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(env.objects.uploaded) != 2 {
		t.Fatalf("expected 2 uploaded orders, got %d", len(env.objects.uploaded))
	}
	if !strings.HasPrefix(resp.Links[0].URL, "https://minio/defense-schedules/day-orders/") {
		t.Fatalf("unexpected link %q", resp.Links[0].URL)
	}
}

func TestGetScheduleFiles(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")

	w := env.do(t, http.MethodGet, "/api/v1/schedule/files?prefix=2024/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "2024/schedule.xlsx") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestProcessUploadedFiles(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")

	body := `{"files":[{"object_path":"2024/schedule.xlsx"},{"object_path":"2024/missing.xlsx"}]}`
	w := env.do(t, http.MethodPost, "/api/v1/files_uploaded", body)
	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Succeeded int                 `json:"succeeded"`
		Failed    int                 `json:"failed"`
		Results   []ProcessFileResult `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Succeeded != 1 || resp.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", resp)
	}
	if resp.Results[0].TargetFile != "2024/schedule.json" || resp.Results[0].Days != 1 {
		t.Fatalf("unexpected result: %+v", resp.Results[0])
	}

	data, ok := env.objects.uploaded["defense-schedules/2024/schedule.json"]
	if !ok {
		t.Fatalf("json not uploaded, got %v", env.objects.uploaded)
	}
	var days []models.DaySchedule
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&days); err != nil {
		t.Fatalf("decode uploaded json: %v", err)
	}
	if len(days) != 1 || days[0].Date != "26 мая" {
		t.Fatalf("unexpected uploaded days: %+v", days)
	}
}

func TestProcessUploadedFilesRejectsEmptyRequest(t *testing.T) {
	env := newTestEnv(t, "Информатика, бакалавры техпрога, ГЭК 1")

	w := env.do(t, http.MethodPost, "/api/v1/files_uploaded", `{"files":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
