package workbook

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sway/internal/types"

	"github.com/xuri/excelize/v2"
)

// Workbook is the sheets of one uploaded file, in workbook order.
type Workbook struct {
	Source string
	Sheets []types.RawSheet
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (types.RawSheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return types.RawSheet{}, false
}

// Open reads every sheet of an .xlsx file
func Open(path string) (*Workbook, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return read(f, path)
}

// Read reads every sheet of an .xlsx workbook from an upload stream
func Read(r io.Reader, source string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return read(f, source)
}

func read(f *excelize.File, source string) (*Workbook, error) {
	wb := &Workbook{Source: source}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, types.RawSheet{Name: name, Rows: rows})
		log.Printf("[Workbook] sheet %q: %d rows", name, len(rows))
	}

	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	return wb, nil
}
