package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"defense-schedule/config"

	"github.com/xuri/excelize/v2"
)

// memorySource отдаёт заранее собранные книги и считает загрузки
type memorySource struct {
	books map[string]*Workbook
	loads map[string]int
}

func newMemorySource(books map[string]*Workbook) *memorySource {
	return &memorySource{books: books, loads: make(map[string]int)}
}

func (m *memorySource) LoadWorkbook(_ context.Context, location string) (*Workbook, error) {
	m.loads[location]++
	wb, ok := m.books[location]
	if !ok {
		return nil, fmt.Errorf("no workbook at %s", location)
	}
	return wb, nil
}

const (
	scheduleLocation  = "schedule.xlsx"
	bachelorsLocation = "themes-bachelors.xlsx"
)

var scheduleTitle = []string{"№", "ФИО", "Тема", "Руководитель", "Рецензент", "", "Комиссия"}

// scheduleSheet - день с одним заседанием из конкретного сценария
func scheduleSheet() *Sheet {
	return &Sheet{Name: "Расписание", Rows: [][]string{
		scheduleTitle,
		{},
		{"", "26 мая (понедельник)", "", "", "", "", "Председатель: Petrov P."},
		{"", "11:00, ауд. 3381", "Информатика/ПА, бакалавры техпрога, ГЭК 5006-02", "", "", "", "Секретарь: Sidorova S."},
		{"1", "Ivanov Ivan", "Theme A", "Supervisor A", "Reviewer A", "", "Orlov O."},
		{"2", "Smirnov Sergey", "Theme B", "Supervisor B", "Reviewer B"},
	}}
}

func themesWorkbook() *Workbook {
	header := []string{"ФИО", "Тема", "Руководитель", "Должность", "Консультант"}
	return NewWorkbook(
		&Sheet{Name: "Информатики", Rows: [][]string{
			header,
			{"Ivanov Ivan", "Theme A", "Supervisor A", "", "Consultant C."},
		}},
		&Sheet{Name: "ПА", Rows: [][]string{
			header,
			{"Smirnov Sergey", "Theme B", "Supervisor B", "", ""},
		}},
		&Sheet{Name: "Технологии программирования", Rows: [][]string{
			header,
			{"Kuznetsov K.", "Theme K", "Supervisor K", "", "Consultant K."},
		}},
	)
}

func testSources() *config.Sources {
	return &config.Sources{
		Schedule: scheduleLocation,
		Themes: map[string]string{
			"бакалавры техпрога": bachelorsLocation,
			"бакалавры ПИ":       bachelorsLocation,
			"магистры техпрога":  "",
			"магистры ПИ":        "",
		},
		CompositeChairs: map[string][]string{
			config.DefaultCompositeChair: {"Информатики", "ПА"},
		},
		ChairAliases: map[string]string{
			"ТП": "Технологии программирования",
		},
	}
}

// writeXLSX сохраняет листы в файл xlsx и возвращает путь к нему
func writeXLSX(t *testing.T, dir, name string, sheets ...*Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("CoordinatesToCellName: %v", err)
				}
				if err := f.SetCellStr(sheet.Name, cell, value); err != nil {
					t.Fatalf("SetCellStr: %v", err)
				}
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}
