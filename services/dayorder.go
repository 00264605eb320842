package services

import (
	"fmt"
	"strconv"

	"defense-schedule/models"

	"github.com/xuri/excelize/v2"
)

const (
	CommissionOrderName = "Порядок дня для ГЭК"
	PublicOrderName     = "Порядок дня для широкой публики"

	orderSheet      = "Sheet1"
	orderRowHeight  = 35.0
	orderFontFamily = "Arial"
	orderFontSize   = 10
)

// DayOrderFileName - имя файла порядка дня: "<вид> (<дата>).xlsx"
func DayOrderFileName(kind, date string) string {
	return fmt.Sprintf("%s (%s).xlsx", kind, date)
}

type cellInfo struct {
	value string
	width int
}

func cell(value string) cellInfo {
	return cellInfo{value: value, width: 1}
}

func wideCell(value string, width int) cellInfo {
	return cellInfo{value: value, width: width}
}

type cellStyle struct {
	bold       bool
	italic     bool
	horizontal string
}

var (
	plainStyle   = cellStyle{}
	boldStyle    = cellStyle{bold: true}
	headerStyle  = cellStyle{bold: true, horizontal: "center"}
	linkStyle    = cellStyle{bold: true, horizontal: "right"}
	cursiveStyle = cellStyle{italic: true, horizontal: "center"}
)

// sheetWriter пишет строки подряд сверху вниз; первая ошибка excelize запоминается
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	next   int // индекс следующей свободной строки, с нуля
	styles map[cellStyle]int
	err    error
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, styles: make(map[cellStyle]int)}
}

func (w *sheetWriter) style(s cellStyle) int {
	if id, ok := w.styles[s]; ok {
		return id
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: s.bold, Italic: s.italic, Family: orderFontFamily, Size: orderFontSize},
		Alignment: &excelize.Alignment{
			Horizontal: s.horizontal,
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil && w.err == nil {
		w.err = err
	}
	w.styles[s] = id
	return id
}

func (w *sheetWriter) setCell(row, col int, value string, s cellStyle) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(w.sheet, name, value); err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(w.sheet, name, name, w.style(s)); err != nil {
		w.err = err
	}
}

// merge объединяет ячейки строки row в диапазоне колонок [firstCol; lastCol]
func (w *sheetWriter) merge(row, firstCol, lastCol int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(firstCol+1, row+1)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(lastCol+1, row+1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.MergeCell(w.sheet, from, to); err != nil {
		w.err = err
	}
}

// writeRow пишет ячейки в новую строку, начиная с колонки col
func (w *sheetWriter) writeRow(cells []cellInfo, s cellStyle, col int) {
	row := w.next
	for _, c := range cells {
		w.setCell(row, col, c.value, s)
		if c.width > 1 {
			w.merge(row, col, col+c.width-1)
		}
		col += c.width
	}
	w.next++
}

// writeColumn пишет ячейки в колонку col, каждую в новую строку
func (w *sheetWriter) writeColumn(cells []cellInfo, s cellStyle, col int) {
	for _, c := range cells {
		w.setCell(w.next, col, c.value, s)
		if c.width > 1 {
			w.merge(w.next, col, col+c.width-1)
		}
		w.next++
	}
}

func (w *sheetWriter) writeEmptyRows(count int) {
	w.next += count
}

func (w *sheetWriter) lastRow() int {
	return w.next - 1
}

func (w *sheetWriter) setColumnWidths(widths map[int]float64) {
	for col, width := range widths {
		if w.err != nil {
			return
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetColWidth(w.sheet, name, name, width); err != nil {
			w.err = err
		}
	}
}

// DayOrderGenerator формирует порядки дня в формате xlsx
type DayOrderGenerator struct{}

func NewDayOrderGenerator() *DayOrderGenerator {
	return &DayOrderGenerator{}
}

// GenerateCommission формирует порядок дня для членов ГЭК: с местами для оценок и комментариев
func (g *DayOrderGenerator) GenerateCommission(day *models.DaySchedule) ([]byte, error) {
	header := []cellInfo{
		cell("ФИО"), wideCell("Оценки", 2),
		cell("Тема"), cell("Научрук"), cell("Консультант"), cell("Рецензент"),
	}
	links := []cellInfo{
		cell("Созвон для защиты:"),
		cell("Созвон для закрытого обсуждения ГЭК:"),
		cell("Материалы:"),
	}
	cursiveRow := []cellInfo{
		wideCell("Член комиссии", 2),
		wideCell("Оценка", 2),
		wideCell("Комментарий", 4),
	}
	members := make([]cellInfo, 0, len(day.CommissionMembers))
	for _, member := range day.CommissionMembers {
		members = append(members, wideCell(member, 2))
	}
	lastCol := len(header) + 1

	return render(func(w *sheetWriter) {
		w.writeRow(header, headerStyle, 1)

		for _, meeting := range day.CommissionMeetings {
			w.writeRow([]cellInfo{
				cell(meeting.TimeAndAuditorium), cell("Рук"), cell("Рец"), cell(meeting.MeetingInfo),
			}, headerStyle, 1)
			w.writeColumn(links, linkStyle, 1)
			for row := w.lastRow() - len(links) + 1; row <= w.lastRow(); row++ {
				w.merge(row, 2, lastCol)
			}

			for _, work := range meeting.StudentWorks {
				w.writeRow([]cellInfo{
					cell(strconv.Itoa(work.Number)),
					cell(work.StudentName),
					cell(""),
					cell(""),
					cell(work.Theme),
					cell(work.Supervisor),
					cell(work.ConsultantName()),
					cell(work.Reviewer),
				}, boldStyle, 0)
				w.writeRow(cursiveRow, cursiveStyle, 0)
				w.writeColumn(members, plainStyle, 0)

				// Места для оценок и комментариев членов комиссии
				for row := w.lastRow() - len(members) + 1; row <= w.lastRow(); row++ {
					w.merge(row, 2, 3)
					w.merge(row, 4, lastCol)
				}

				w.writeEmptyRows(1)
				w.merge(w.lastRow(), 0, lastCol)
			}

			w.writeEmptyRows(2)
			for i := 0; i < 2; i++ {
				w.merge(w.lastRow()-i, 0, lastCol)
			}
		}

		w.setColumnWidths(map[int]float64{0: 3, 1: 35, 2: 10, 3: 10, 4: 65, 5: 30, 6: 37, 7: 30})
	})
}

// GeneratePublic формирует порядок дня для широкой публики
func (g *DayOrderGenerator) GeneratePublic(day *models.DaySchedule) ([]byte, error) {
	header := []cellInfo{
		cell("ФИО"), cell("Тема"), cell("Научрук"), cell("Консультант"), cell("Рецензент"),
	}
	links := []cellInfo{
		cell("Созвон для защиты:"),
		cell("Материалы:"),
	}
	lastCol := len(header)

	return render(func(w *sheetWriter) {
		w.writeRow(header, headerStyle, 1)

		for _, meeting := range day.CommissionMeetings {
			w.writeRow([]cellInfo{cell(meeting.TimeAndAuditorium), cell(meeting.MeetingInfo)}, headerStyle, 1)
			w.writeColumn(links, linkStyle, 1)
			for row := w.lastRow() - len(links) + 1; row <= w.lastRow(); row++ {
				w.merge(row, 2, lastCol)
			}

			for _, work := range meeting.StudentWorks {
				w.writeRow([]cellInfo{
					cell(strconv.Itoa(work.Number)),
					cell(work.StudentName),
					cell(work.Theme),
					cell(work.Supervisor),
					cell(work.ConsultantName()),
					cell(work.Reviewer),
				}, plainStyle, 0)
			}

			w.writeEmptyRows(1)
		}

		w.setColumnWidths(map[int]float64{0: 3, 1: 35, 2: 65, 3: 30, 4: 37, 5: 30})
	})
}

func render(fill func(w *sheetWriter)) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	w := newSheetWriter(f, orderSheet)
	fill(w)
	if w.err != nil {
		return nil, fmt.Errorf("failed to render day order: %w", w.err)
	}

	height := orderRowHeight
	customHeight := true
	if err := f.SetSheetProps(orderSheet, &excelize.SheetPropsOptions{
		DefaultRowHeight: &height,
		CustomHeight:     &customHeight,
	}); err != nil {
		return nil, fmt.Errorf("failed to set row height: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write day order: %w", err)
	}
	return buf.Bytes(), nil
}
