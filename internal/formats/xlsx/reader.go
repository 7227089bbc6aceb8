// Package xlsx reads spreadsheet workbooks into plain rows of text.
//
// Modern OOXML workbooks (.xlsx, .xlsm, .xltx) are read with excelize. When
// that fails the bytes are retried with the legacy BIFF reader so that old
// .xls uploads still work.
package xlsx

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Engines used to open a workbook.
const (
	EngineExcelize = "excelize"
	EngineLegacy   = "xls"
)

// ErrUnreadable is returned when no engine could open the workbook.
var ErrUnreadable = errors.New("could not read workbook")

// SheetError records a failure to read a single sheet. The rest of the
// workbook stays usable.
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("could not read sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// Sheet represents a single worksheet's data.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
	Err  error      `json:"-"`
}

// Workbook represents a parsed workbook with its sheets in declared order.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
	Engine string  `json:"engine"`
}

// ReadFile reads a workbook from disk.
func ReadFile(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return ReadBytes(data)
}

// ReadBytes parses workbook bytes, trying excelize first and the legacy
// reader second. Per-sheet failures are reported on Sheet.Err, not here.
func ReadBytes(data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrUnreadable)
	}

	wb, modernErr := readModern(data)
	if modernErr == nil {
		return wb, nil
	}

	wb, legacyErr := readLegacy(data)
	if legacyErr == nil {
		return wb, nil
	}

	return nil, fmt.Errorf("%w — is this a valid .xlsx or .xls file? (xlsx: %v; xls: %v)", ErrUnreadable, modernErr, legacyErr)
}

func readModern(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{Engine: EngineExcelize}
	for _, name := range f.GetSheetList() {
		sheet := Sheet{Name: name}
		rows, err := f.GetRows(name)
		if err != nil {
			sheet.Err = &SheetError{Sheet: name, Err: err}
		} else {
			sheet.Rows = dropBlankRows(rows)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

// readLegacy uses extrame/xls, which panics on some malformed input.
func readLegacy(data []byte) (wb *Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = fmt.Errorf("legacy reader failed: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if book.NumSheets() == 0 {
		return nil, errors.New("no sheets found")
	}

	wb = &Workbook{Engine: EngineLegacy}
	for i := 0; i < book.NumSheets(); i++ {
		wb.Sheets = append(wb.Sheets, readLegacySheet(book, i))
	}
	return wb, nil
}

func readLegacySheet(book *xls.WorkBook, index int) (sheet Sheet) {
	sheet.Name = fmt.Sprintf("Sheet%d", index+1)
	defer func() {
		if r := recover(); r != nil {
			sheet.Rows = nil
			sheet.Err = &SheetError{Sheet: sheet.Name, Err: fmt.Errorf("%v", r)}
		}
	}()

	ws := book.GetSheet(index)
	if ws == nil {
		sheet.Err = &SheetError{Sheet: sheet.Name, Err: errors.New("sheet could not be decoded")}
		return sheet
	}
	if ws.Name != "" {
		sheet.Name = ws.Name
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for r := 0; r <= int(ws.MaxRow); r++ {
		if row := legacyRow(ws, r); row != nil {
			rows = append(rows, legacyCells(row))
		}
	}
	sheet.Rows = dropBlankRows(rows)
	return sheet
}

// legacyRow returns nil for row numbers the sheet never wrote. The library
// dereferences the missing entry itself, so the panic is turned into a gap.
func legacyRow(ws *xls.WorkSheet, index int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(index)
}

// maxLegacyColumns is the BIFF8 column limit.
const maxLegacyColumns = 256

// legacyCells reads one row. Rows created from cell records alone carry no
// width, so their columns are scanned up to the format limit.
func legacyCells(row *xls.Row) []string {
	width := row.LastCol()
	scanned := width <= 0
	if scanned {
		width = maxLegacyColumns
	}
	cells := make([]string, width)
	for c := range cells {
		cells[c] = row.Col(c)
	}
	if scanned {
		end := len(cells)
		for end > 0 && cells[end-1] == "" {
			end--
		}
		cells = cells[:end]
	}
	return cells
}

// dropBlankRows removes every row with no visible content, wherever it sits,
// so the first non-blank row becomes the header and gaps never use up the row cap.
func dropBlankRows(rows [][]string) [][]string {
	kept := rows[:0]
	for _, row := range rows {
		if !isBlank(row) {
			kept = append(kept, row)
		}
	}
	return kept
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// GetSheet returns a specific sheet by name. Returns an error if the sheet is not found.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}

	available := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		available[i] = s.Name
	}
	return nil, fmt.Errorf("sheet %q not found — available sheets: %v", name, available)
}

// IsEmpty reports whether the sheet has no data rows beneath its header.
// Blank rows are dropped when a sheet is read, so Rows[0] is the header.
func (s *Sheet) IsEmpty() bool {
	return len(s.Rows) <= 1
}

// Head returns a copy of the sheet holding the header row and at most n data rows.
func (s *Sheet) Head(n int) Sheet {
	if n < 0 {
		n = 0
	}
	limit := len(s.Rows)
	if limit > n+1 {
		limit = n + 1
	}
	return Sheet{Name: s.Name, Rows: s.Rows[:limit], Err: s.Err}
}

// ToCSV converts a sheet's data to CSV. Ragged rows are padded to the widest row.
func (s *Sheet) ToCSV() string {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range s.Rows {
		record := make([]string, width)
		copy(record, row)
		// Writes go to a strings.Builder and cannot fail.
		_ = w.Write(record)
	}
	w.Flush()
	return b.String()
}

// RowCount returns the total number of data rows (excluding empty rows).
func (s *Sheet) RowCount() int {
	count := 0
	for _, row := range s.Rows {
		if !isBlank(row) {
			count++
		}
	}
	return count
}
