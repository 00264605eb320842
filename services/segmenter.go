package services

import "strings"

// Количество колонок расписания, которые читаются из каждой строки блока
const scheduleColumnCount = 8

// Колонки строк с датой и с заголовком заседания
var headerColumns = struct {
	DateTimeAuditorium int
	MeetingInfo        int
	CommissionMember   int
}{
	DateTimeAuditorium: 1,
	MeetingInfo:        2,
	CommissionMember:   6,
}

// Колонки строк с работами студентов
var studentColumns = struct {
	Number           int
	StudentName      int
	Theme            int
	Supervisor       int
	Reviewer         int
	CommissionMember int
}{
	Number:           0,
	StudentName:      1,
	Theme:            2,
	Supervisor:       3,
	Reviewer:         4,
	CommissionMember: 6,
}

// BlockRow - строка блока, обрезанная до колонок расписания
type BlockRow struct {
	Index int // номер строки на листе
	Cells [scheduleColumnCount]string
}

// Block - непрерывная группа непустых строк между пустыми строками
type Block struct {
	Rows []BlockRow
}

// BlockScanner проходит лист сверху вниз и отдаёт блоки по одному.
// Строка 0 (заголовок таблицы) пропускается.
type BlockScanner struct {
	sheet *Sheet
	row   int
	block Block
}

func NewBlockScanner(sheet *Sheet) *BlockScanner {
	return &BlockScanner{sheet: sheet, row: 1}
}

// Next переходит к следующему блоку. Возвращает false в конце листа.
func (s *BlockScanner) Next() bool {
	for s.row < s.sheet.RowCount() {
		if isBlank(s.sheet.Rows[s.row]) {
			s.row++
			continue
		}

		block := Block{}
		for s.row < s.sheet.RowCount() && !isBlank(s.sheet.Rows[s.row]) {
			cells := s.sheet.Rows[s.row]
			// Строки, где заполнена только первая колонка, - разделители
			if len(cells) > 1 && !isBlank(cells[1:]) {
				block.Rows = append(block.Rows, newBlockRow(s.row, cells))
			}
			s.row++
		}

		if len(block.Rows) > 0 {
			s.block = block
			return true
		}
	}
	return false
}

// Block возвращает текущий блок
func (s *BlockScanner) Block() Block {
	return s.block
}

func newBlockRow(index int, cells []string) BlockRow {
	row := BlockRow{Index: index}
	for i := 0; i < scheduleColumnCount && i < len(cells); i++ {
		row.Cells[i] = cells[i]
	}
	return row
}

// isBlank - в строке нет ни одной заполненной ячейки.
// Ячейка из одних пробелов считается заполненной и блок не разрывает.
func isBlank(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}

// DateRow - первая строка блока с датой
type DateRow struct {
	Index int // номер строки на листе
	Date  string
}

// MeetingHeaderRow - строка с временем, аудиторией и описанием заседания
type MeetingHeaderRow struct {
	TimeAndAuditorium string
	MeetingInfo       string
}

// StudentRow - строка с работой студента, значения ещё не проверены
type StudentRow struct {
	Index       int
	Number      string
	StudentName string
	Theme       string
	Supervisor  string
	Reviewer    string
}

// ClassifiedBlock - блок, разложенный по ролям строк
type ClassifiedBlock struct {
	Date     DateRow
	Header   MeetingHeaderRow
	Students []StudentRow
	// Значения колонки членов комиссии по всем строкам блока сверху вниз
	Members []string
}

// Classify раскладывает строки блока по ролям: дата, заголовок заседания, студенты.
// Блок из одной строки заседания не содержит и возвращает false.
func Classify(block Block) (ClassifiedBlock, bool) {
	if len(block.Rows) < 2 {
		return ClassifiedBlock{}, false
	}

	dateRow := block.Rows[0]
	headerRow := block.Rows[1]
	classified := ClassifiedBlock{
		Date: DateRow{Index: dateRow.Index, Date: dateRow.Cells[headerColumns.DateTimeAuditorium]},
		Header: MeetingHeaderRow{
			TimeAndAuditorium: strings.TrimSpace(headerRow.Cells[headerColumns.DateTimeAuditorium]),
			MeetingInfo:       strings.TrimSpace(headerRow.Cells[headerColumns.MeetingInfo]),
		},
	}

	for _, row := range block.Rows[2:] {
		classified.Students = append(classified.Students, StudentRow{
			Index:       row.Index,
			Number:      strings.TrimSpace(row.Cells[studentColumns.Number]),
			StudentName: strings.TrimSpace(row.Cells[studentColumns.StudentName]),
			Theme:       strings.TrimSpace(row.Cells[studentColumns.Theme]),
			Supervisor:  strings.TrimSpace(row.Cells[studentColumns.Supervisor]),
			Reviewer:    strings.TrimSpace(row.Cells[studentColumns.Reviewer]),
		})
	}

	for i, row := range block.Rows {
		column := studentColumns.CommissionMember
		if i < 2 {
			column = headerColumns.CommissionMember
		}
		classified.Members = append(classified.Members, row.Cells[column])
	}
	return classified, true
}
