package services

import (
	"bytes"
	"testing"

	"defense-schedule/models"

	"github.com/xuri/excelize/v2"
)

func orderDay() *models.DaySchedule {
	consultant := "Consultant C."
	return &models.DaySchedule{
		Date:              "26 мая",
		CommissionMembers: []string{"Petrov P.", "Orlov O."},
		CommissionMeetings: []models.CommissionMeeting{{
			TimeAndAuditorium: "11:00, ауд. 3381",
			MeetingInfo:       "Информатика/ПА, бакалавры техпрога, ГЭК 5006-02",
			StudentWorks: []models.StudentWork{{
				Number:      1,
				StudentName: "Ivanov Ivan",
				Theme:       "Theme A",
				Supervisor:  "Supervisor A",
				Consultant:  &consultant,
				Reviewer:    "Reviewer A",
			}},
		}},
	}
}

func openOrder(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func assertCells(t *testing.T, f *excelize.File, want map[string]string) {
	t.Helper()
	for name, value := range want {
		got, err := f.GetCellValue(orderSheet, name)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", name, err)
		}
		if got != value {
			t.Fatalf("cell %s = %q, want %q", name, got, value)
		}
	}
}

func TestDayOrderFileName(t *testing.T) {
	if got := DayOrderFileName(CommissionOrderName, "26 мая"); got != "Порядок дня для ГЭК (26 мая).xlsx" {
		t.Fatalf("file name = %q", got)
	}
}

func TestGenerateCommission(t *testing.T) {
	data, err := NewDayOrderGenerator().GenerateCommission(orderDay())
	if err != nil {
		t.Fatalf("GenerateCommission: %v", err)
	}
	f := openOrder(t, data)

	assertCells(t, f, map[string]string{
		"B1": "ФИО",
		"C1": "Оценки",
		"E1": "Тема",
		"H1": "Рецензент",
		"B2": "11:00, ауд. 3381",
		"E2": "Информатика/ПА, бакалавры техпрога, ГЭК 5006-02",
		"B3": "Созвон для защиты:",
		"B5": "Материалы:",
		"A6": "1",
		"B6": "Ivanov Ivan",
		"G6": "Consultant C.",
		"A7": "Член комиссии",
		"E7": "Комментарий",
		"A8": "Petrov P.",
		"A9": "Orlov O.",
	})

	merged, err := f.GetMergeCells(orderSheet)
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	found := false
	for _, m := range merged {
		if m.GetStartAxis() == "C1" && m.GetEndAxis() == "D1" {
			found = true
		}
	}
	if !found {
		t.Fatal("marks header must span two columns")
	}
}

func TestGeneratePublic(t *testing.T) {
	data, err := NewDayOrderGenerator().GeneratePublic(orderDay())
	if err != nil {
		t.Fatalf("GeneratePublic: %v", err)
	}
	f := openOrder(t, data)

	assertCells(t, f, map[string]string{
		"B1": "ФИО",
		"F1": "Рецензент",
		"B2": "11:00, ауд. 3381",
		"C2": "Информатика/ПА, бакалавры техпрога, ГЭК 5006-02",
		"B4": "Материалы:",
		"A5": "1",
		"B5": "Ivanov Ivan",
		"E5": "Consultant C.",
		"F5": "Reviewer A",
	})
}
