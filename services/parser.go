package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"defense-schedule/config"
	"defense-schedule/models"
)

// Метки, по которым заседание считается защитой ВКР
var defenseMarkers = []string{"бакалавры", "магистры"}

const (
	chairPrefix     = "Председатель: "
	secretaryPrefix = "Секретарь:"
	infoSeparator   = ", "
)

// Пояснения в скобках после даты: "26 мая (понедельник)"
var textInBracketsPattern = regexp.MustCompile(` \([^)]*\)`)

var ErrFormat = errors.New("invalid schedule format")

// FormatError - нарушение формата расписания с исходным текстом
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Text)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// ParseMeetingInfo разбирает описание "<кафедра>, <уровень>, <ГЭК>"
func ParseMeetingInfo(text string) (models.MeetingInfo, error) {
	fields := strings.Split(text, infoSeparator)
	if len(fields) != 3 {
		return models.MeetingInfo{}, &FormatError{
			Text:   text,
			Reason: fmt.Sprintf("meeting info must have 3 fields, got %d", len(fields)),
		}
	}
	return models.MeetingInfo{
		Chair:      strings.TrimSpace(fields[0]),
		Level:      strings.TrimSpace(fields[1]),
		Commission: strings.TrimSpace(fields[2]),
	}, nil
}

// IsDefenseMeeting проверяет, что заседание посвящено работам бакалавров или магистров
func IsDefenseMeeting(info string) bool {
	lower := strings.ToLower(info)
	for _, marker := range defenseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// AssembleMeeting собирает заседание из разобранного блока.
// Строки без ФИО студента отбрасываются.
func AssembleMeeting(block ClassifiedBlock) (models.CommissionMeeting, error) {
	meeting := models.CommissionMeeting{
		TimeAndAuditorium: block.Header.TimeAndAuditorium,
		MeetingInfo:       block.Header.MeetingInfo,
		StudentWorks:      make([]models.StudentWork, 0, len(block.Students)),
	}

	for _, row := range block.Students {
		if row.StudentName == "" {
			continue
		}
		number, err := parseNumber(row.Number)
		if err != nil {
			return models.CommissionMeeting{}, fmt.Errorf("row %d: %w", row.Index+1, err)
		}
		meeting.StudentWorks = append(meeting.StudentWorks, models.StudentWork{
			Number:      number,
			StudentName: row.StudentName,
			Theme:       row.Theme,
			Supervisor:  row.Supervisor,
			Reviewer:    row.Reviewer,
		})
	}
	return meeting, nil
}

func parseNumber(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || number != float64(int(number)) {
		return 0, &FormatError{Text: value, Reason: "student number is not an integer"}
	}
	return int(number), nil
}

// DayDate убирает пояснения в скобках из текста даты
func DayDate(text string) string {
	return strings.TrimSpace(textInBracketsPattern.ReplaceAllString(text, ""))
}

// CommissionMembers выбирает членов комиссии из колонки блока:
// значения берутся сверху до первой пустой ячейки, секретарь пропускается,
// у председателя убирается префикс.
func CommissionMembers(values []string) []string {
	members := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			break
		}
		if strings.HasPrefix(value, secretaryPrefix) {
			continue
		}
		members = append(members, strings.TrimPrefix(value, chairPrefix))
	}
	return members
}

// ParseWarning - замечание к расписанию, которое не прерывает разбор
type ParseWarning struct {
	Row     int    `json:"row"` // номер строки на листе, с 1
	Date    string `json:"date"`
	Message string `json:"message"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("строка %d, дата %q: %s", w.Row, w.Date, w.Message)
}

// ExtractDays проходит лист расписания и группирует заседания по дням.
// Описания заседаний-защит проверяются на формат; консультанты не заполняются.
// Дата, встретившаяся не подряд, добавляется к уже созданному дню и попадает в замечания.
func ExtractDays(sheet *Sheet) ([]models.DaySchedule, []ParseWarning, error) {
	days := make([]models.DaySchedule, 0)
	dayIndex := make(map[string]int)
	var warnings []ParseWarning

	scanner := NewBlockScanner(sheet)
	for scanner.Next() {
		block, ok := Classify(scanner.Block())
		if !ok || !IsDefenseMeeting(block.Header.MeetingInfo) {
			continue
		}
		if _, err := ParseMeetingInfo(block.Header.MeetingInfo); err != nil {
			return nil, nil, err
		}

		meeting, err := AssembleMeeting(block)
		if err != nil {
			return nil, nil, err
		}

		date := DayDate(block.Date.Date)
		if idx, found := dayIndex[date]; found {
			if idx != len(days)-1 {
				warning := ParseWarning{
					Row:     block.Date.Index + 1,
					Date:    date,
					Message: "дата встречается в расписании не подряд, заседание добавлено к уже созданному дню",
				}
				log.Printf("Расписание: %s", warning)
				warnings = append(warnings, warning)
			}
			days[idx].CommissionMeetings = append(days[idx].CommissionMeetings, meeting)
			continue
		}

		dayIndex[date] = len(days)
		days = append(days, models.DaySchedule{
			Date:               date,
			CommissionMembers:  CommissionMembers(block.Members),
			CommissionMeetings: []models.CommissionMeeting{meeting},
		})
	}
	return days, warnings, nil
}

// WorkbookSource открывает книгу по пути или ссылке
type WorkbookSource interface {
	LoadWorkbook(ctx context.Context, location string) (*Workbook, error)
}

// ScheduleParser извлекает дни защит из расписания и дополняет их консультантами
type ScheduleParser struct {
	source   WorkbookSource
	sources  *config.Sources
	warnings []ParseWarning
}

func NewScheduleParser(source WorkbookSource, sources *config.Sources) *ScheduleParser {
	return &ScheduleParser{source: source, sources: sources}
}

// Parse разбирает расписание (лист с индексом 0). При ошибке дни не возвращаются.
func (p *ScheduleParser) Parse(ctx context.Context) ([]models.DaySchedule, error) {
	wb, err := p.source.LoadWorkbook(ctx, p.sources.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return p.ParseWorkbook(ctx, wb)
}

// ParseWorkbook разбирает уже загруженную книгу расписания
func (p *ScheduleParser) ParseWorkbook(ctx context.Context, wb *Workbook) ([]models.DaySchedule, error) {
	sheet, err := wb.SheetAt(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule sheet: %w", err)
	}

	days, warnings, err := ExtractDays(sheet)
	if err != nil {
		return nil, err
	}
	p.warnings = warnings

	resolver := NewConsultantResolver(p.source, p.sources)
	for i := range days {
		for j := range days[i].CommissionMeetings {
			if err := resolver.Resolve(ctx, &days[i].CommissionMeetings[j]); err != nil {
				return nil, err
			}
		}
	}

	log.Printf("Найдено дней защит: %d", len(days))
	return days, nil
}

// Warnings возвращает замечания последнего успешного разбора
func (p *ScheduleParser) Warnings() []ParseWarning {
	return p.warnings
}
