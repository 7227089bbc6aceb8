// Package preview provides the command that shows exactly what the model sees.
package preview

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/internal/app"
	"github.com/klytics/sheetlens/internal/formats/xlsx"
	"github.com/klytics/sheetlens/internal/preview"
)

type sheetSummary struct {
	Name   string `json:"name"`
	Rows   int    `json:"rows"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type previewOutput struct {
	File    string         `json:"file"`
	Engine  string         `json:"engine"`
	Rows    int            `json:"rowCap"`
	Sheets  []sheetSummary `json:"sheets"`
	Preview string         `json:"preview"`
}

// NewCommand returns the preview command.
func NewCommand() *cobra.Command {
	var rows int
	var table bool

	cmd := &cobra.Command{
		Use:   "preview <file.xlsx|file.xls>",
		Short: "Print the text preview a workbook turns into",
		Long:  "Renders the same per-sheet preview that is sent to the model, without calling it. Pass '-' to read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			if !cmd.Flags().Changed("rows") {
				cfg, err := app.LoadConfig(cmd)
				if err != nil {
					return err
				}
				rows = cfg.Preview.CLIRows
			}
			if rows <= 0 {
				rows = preview.DefaultRows
			}

			name, data, err := readWorkbook(args)
			if err != nil {
				return err
			}
			wb, err := xlsx.ReadBytes(data)
			if err != nil {
				return err
			}

			if table {
				return outputTable(wb, rows)
			}

			out := previewOutput{File: name, Engine: wb.Engine, Rows: rows}
			b := &preview.Builder{OnSheet: func(sheet string, status preview.Status, err error) {
				s := sheetSummary{Name: sheet, Status: string(status)}
				if err != nil {
					s.Error = err.Error()
				}
				out.Sheets = append(out.Sheets, s)
			}}
			out.Preview = b.Render(wb, rows)
			for i := range out.Sheets {
				out.Sheets[i].Rows = wb.Sheets[i].RowCount()
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printPreview(out.Preview)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "Data rows per sheet (default from preview.cli_rows)")
	cmd.Flags().BoolVar(&table, "table", false, "Pretty-print the capped sheets as tables instead")

	return cmd
}

func readWorkbook(args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("could not read from stdin: %w", err)
		}
		if len(data) == 0 {
			return "", nil, fmt.Errorf("no input provided — pass an .xlsx/.xls file path or pipe data to stdin")
		}
		return "-", data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("could not read file %s: %w", args[0], err)
	}
	return args[0], data, nil
}

func printPreview(text string) {
	header := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)
	red := color.New(color.FgRed)

	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case strings.HasPrefix(line, "### SHEET: "):
			header.Print(line)
		case line == "(empty)\n":
			dim.Print(line)
		case strings.HasPrefix(line, "(error reading sheet: "):
			red.Print(line)
		default:
			fmt.Print(line)
		}
	}
}

func outputTable(wb *xlsx.Workbook, rows int) error {
	headerStyle := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		headerStyle.Printf("Sheet: %s\n", sheet.Name)

		if sheet.Err != nil {
			color.New(color.FgRed).Printf("  (%v)\n\n", sheet.Err)
			continue
		}
		if len(sheet.Rows) == 0 {
			dim.Println("  (empty)")
			continue
		}

		head := sheet.Head(rows)
		colWidths := columnWidths(head.Rows)

		printRow(head.Rows[0], colWidths, color.New(color.Bold))
		dim.Print("  ")
		for j, w := range colWidths {
			if j > 0 {
				dim.Print("+-")
			}
			dim.Print(strings.Repeat("-", w+1))
		}
		dim.Println()

		for r := 1; r < len(head.Rows); r++ {
			printRow(head.Rows[r], colWidths, nil)
		}

		if shown, total := len(head.Rows)-1, len(sheet.Rows)-1; shown < total {
			dim.Printf("  (%d of %d rows)\n\n", shown, total)
		} else {
			dim.Printf("  (%d rows)\n\n", total)
		}
	}

	return nil
}

// columnWidths sizes each column to its widest cell, clamped to [3, 40].
func columnWidths(rows [][]string) []int {
	widths := make([]int, 0)
	for _, row := range rows {
		for j, cell := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			if len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 3), 40)
	}
	return widths
}

func printRow(row []string, colWidths []int, style *color.Color) {
	fmt.Print("  ")
	for j := range colWidths {
		if j > 0 {
			fmt.Print("| ")
		}
		cell := ""
		if j < len(row) {
			cell = row[j]
		}
		if len(cell) > colWidths[j] {
			cell = cell[:colWidths[j]-1] + "~"
		}
		padded := cell + strings.Repeat(" ", colWidths[j]-len(cell)+1)
		if style != nil {
			style.Print(padded)
		} else {
			fmt.Print(padded)
		}
	}
	fmt.Println()
}
