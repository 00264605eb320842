package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"defense-schedule/config"
	"defense-schedule/models"
)

// Колонки таблицы тем ВКР
var themesColumns = struct {
	StudentName int
	Consultant  int
}{
	StudentName: 0,
	Consultant:  4,
}

type consultantPair struct {
	student    string
	consultant string
}

// ConsultantResolver находит консультантов студентов в таблицах тем.
// Загруженные книги кэшируются на время одного разбора расписания.
type ConsultantResolver struct {
	source    WorkbookSource
	themes    map[string]string
	composite map[string][]string
	aliases   map[string]string
	loaded    map[string]*Workbook
}

func NewConsultantResolver(source WorkbookSource, sources *config.Sources) *ConsultantResolver {
	return &ConsultantResolver{
		source:    source,
		themes:    sources.Themes,
		composite: sources.CompositeChairs,
		aliases:   sources.ChairAliases,
		loaded:    make(map[string]*Workbook),
	}
}

// Resolve заполняет консультантов у работ заседания.
// Если для уровня не задана таблица тем, заседание пропускается без ошибки.
func (r *ConsultantResolver) Resolve(ctx context.Context, meeting *models.CommissionMeeting) error {
	info, err := ParseMeetingInfo(meeting.MeetingInfo)
	if err != nil {
		return err
	}

	location, known := r.themes[info.Level]
	if !known {
		return &FormatError{Text: info.Level, Reason: "unknown level of education"}
	}
	if location == "" {
		log.Printf("Таблица тем для уровня %q не задана, консультанты для %q не заполняются", info.Level, meeting.MeetingInfo)
		return nil
	}

	wb, err := r.workbook(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to load themes for %q: %w", info.Level, err)
	}

	sheet, err := r.ChairSheet(wb, info.Chair)
	if err != nil {
		return fmt.Errorf("themes for %q: %w", info.Level, err)
	}

	pairs := readConsultants(sheet)
	if dups := applyConsultants(meeting.StudentWorks, pairs); len(dups) > 0 {
		// Берётся последнее совпадение; дубликаты только отмечаются в логе
		log.Printf("В листе %q несколько строк для студентов %v, использована последняя", sheet.Name, dups)
	}
	return nil
}

// ChairSheet выбирает лист кафедры: составная кафедра объединяет несколько листов,
// псевдоним указывает на лист с другим именем, иначе берётся лист с именем кафедры.
func (r *ConsultantResolver) ChairSheet(wb *Workbook, chair string) (*Sheet, error) {
	if names, ok := r.composite[chair]; ok {
		sheets := make([]*Sheet, 0, len(names))
		for _, name := range names {
			s, err := wb.Sheet(name)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, s)
		}
		return MergeSheets(chair, sheets...), nil
	}
	if alias, ok := r.aliases[chair]; ok {
		return wb.Sheet(alias)
	}
	return wb.Sheet(chair)
}

func (r *ConsultantResolver) workbook(ctx context.Context, location string) (*Workbook, error) {
	if wb, ok := r.loaded[location]; ok {
		return wb, nil
	}
	wb, err := r.source.LoadWorkbook(ctx, location)
	if err != nil {
		return nil, err
	}
	r.loaded[location] = wb
	return wb, nil
}

func readConsultants(sheet *Sheet) []consultantPair {
	pairs := make([]consultantPair, 0, sheet.RowCount())
	for i := 1; i < sheet.RowCount(); i++ {
		pairs = append(pairs, consultantPair{
			student:    strings.TrimSpace(sheet.Cell(i, themesColumns.StudentName)),
			consultant: strings.TrimSpace(sheet.Cell(i, themesColumns.Consultant)),
		})
	}
	return pairs
}

// applyConsultants проставляет консультантов по точному совпадению ФИО.
// Возвращает студентов, для которых нашлось больше одной строки.
func applyConsultants(works []models.StudentWork, pairs []consultantPair) []string {
	var duplicates []string
	for i := range works {
		matches := 0
		for _, pair := range pairs {
			if pair.student != works[i].StudentName {
				continue
			}
			consultant := pair.consultant
			works[i].Consultant = &consultant
			matches++
		}
		if matches > 1 {
			duplicates = append(duplicates, works[i].StudentName)
		}
	}
	return duplicates
}
