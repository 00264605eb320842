package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoSheets      = errors.New("workbook has no sheets")
	ErrSheetNotFound = errors.New("sheet not found")
)

// Сигнатура составного документа OLE2, в котором хранится старый формат .xls
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Sheet - лист, полностью прочитанный в память (только текстовые значения)
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell возвращает значение ячейки или пустую строку за пределами листа
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// RowCount - количество строк листа
func (s *Sheet) RowCount() int {
	return len(s.Rows)
}

// Workbook - набор листов, прочитанных из xlsx или xls
type Workbook struct {
	sheets []*Sheet
}

func NewWorkbook(sheets ...*Sheet) *Workbook {
	return &Workbook{sheets: sheets}
}

// SheetAt возвращает лист по индексу
func (w *Workbook) SheetAt(index int) (*Sheet, error) {
	if len(w.sheets) == 0 {
		return nil, ErrNoSheets
	}
	if index < 0 || index >= len(w.sheets) {
		return nil, fmt.Errorf("%w: index %d", ErrSheetNotFound, index)
	}
	return w.sheets[index], nil
}

// Sheet возвращает лист по имени
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	for _, s := range w.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// SheetNames возвращает имена листов в порядке книги
func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.sheets))
	for _, s := range w.sheets {
		names = append(names, s.Name)
	}
	return names
}

// LoadWorkbook читает поток целиком и загружает все листы.
// Исходный файл закрывается до возврата, поэтому наружу не утекают открытые дескрипторы.
func LoadWorkbook(r io.Reader) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	if bytes.HasPrefix(data, oleSignature) {
		return loadXLS(data)
	}
	return loadXLSX(data)
}

func loadXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	wb := &Workbook{sheets: make([]*Sheet, 0, len(names))}
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.sheets = append(wb.sheets, &Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

func loadXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	// Без потока Workbook библиотека возвращает nil без ошибки
	if book == nil {
		return nil, errors.New("failed to open xls: workbook stream not found")
	}
	if book.NumSheets() == 0 {
		return nil, ErrNoSheets
	}

	wb := &Workbook{sheets: make([]*Sheet, 0, book.NumSheets())}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := &Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := xlsRow(ws, r)
			if row == nil {
				sheet.Rows = append(sheet.Rows, []string{})
				continue
			}
			cells := make([]string, 0, row.LastCol()+1)
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			sheet.Rows = append(sheet.Rows, trimTrailingBlank(cells))
		}
		wb.sheets = append(wb.sheets, sheet)
	}
	return wb, nil
}

// xlsRow возвращает строку листа или nil, если строки нет в файле.
// WorkSheet.Row паникует на отсутствующих строках.
func xlsRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

func trimTrailingBlank(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

// MergeSheets объединяет листы с одинаковой шапкой в новый лист:
// шапка берётся из первого листа, затем идут строки данных всех листов по порядку.
// Совместимость шапок не проверяется.
func MergeSheets(name string, sheets ...*Sheet) *Sheet {
	merged := &Sheet{Name: name}
	if len(sheets) == 0 {
		return merged
	}

	header := []string{}
	if len(sheets[0].Rows) > 0 {
		header = append(header, sheets[0].Rows[0]...)
	}
	merged.Rows = append(merged.Rows, header)

	for _, s := range sheets {
		for i := 1; i < len(s.Rows); i++ {
			merged.Rows = append(merged.Rows, append([]string(nil), s.Rows[i]...))
		}
	}
	return merged
}
