// Package preview flattens a workbook into one text blob that can be embedded
// in a model prompt: a "### SHEET: <name>" header per sheet followed by a
// row-capped CSV rendering of that sheet.
package preview

import (
	"fmt"
	"strings"

	"github.com/klytics/sheetlens/internal/formats/xlsx"
)

// DefaultRows is the per-sheet data row cap used when none is given.
const DefaultRows = 50

// Status describes how a sheet was rendered.
type Status string

const (
	StatusOK    Status = "ok"
	StatusEmpty Status = "empty"
	StatusError Status = "error"
)

// SheetFunc observes each sheet as it is rendered. err is non-nil only for StatusError.
type SheetFunc func(sheet string, status Status, err error)

// Builder renders workbook previews. The zero value is ready to use.
type Builder struct {
	OnSheet SheetFunc
}

// Build parses raw workbook bytes and renders the preview. It fails only when
// the workbook itself cannot be opened.
func (b *Builder) Build(data []byte, rows int) (string, error) {
	wb, err := xlsx.ReadBytes(data)
	if err != nil {
		return "", err
	}
	return b.Render(wb, rows), nil
}

// Render joins one block per sheet, in workbook order, with newlines.
func (b *Builder) Render(wb *xlsx.Workbook, rows int) string {
	if rows <= 0 {
		rows = DefaultRows
	}

	blocks := make([]string, 0, len(wb.Sheets))
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		text, status := Block(sheet, rows)
		if b != nil && b.OnSheet != nil {
			b.OnSheet(sheet.Name, status, sheet.Err)
		}
		blocks = append(blocks, text)
	}
	return strings.Join(blocks, "\n")
}

// Block renders a single sheet.
func Block(sheet *xlsx.Sheet, rows int) (string, Status) {
	header := fmt.Sprintf("### SHEET: %s\n", sheet.Name)

	if sheet.Err != nil {
		return header + fmt.Sprintf("(error reading sheet: %v)\n", sheet.Err), StatusError
	}
	if sheet.IsEmpty() {
		return header + "(empty)\n", StatusEmpty
	}

	head := sheet.Head(rows)
	return header + head.ToCSV(), StatusOK
}

// Build renders a preview with a zero Builder.
func Build(data []byte, rows int) (string, error) {
	var b Builder
	return b.Build(data, rows)
}
