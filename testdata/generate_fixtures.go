//go:build ignore

// This program generates test fixture workbooks for SheetLens.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klytics/sheetlens/internal/formats/xlsx"
)

func main() {
	if err := generateSample(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.xlsx: %v\n", err)
		os.Exit(1)
	}

	if err := generateLarge(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating large.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

func generateSample() error {
	wb := &xlsx.Workbook{
		Sheets: []xlsx.Sheet{
			{
				Name: "Sales",
				Rows: [][]string{
					{"Region", "Q1", "Q2", "Q3", "Q4"},
					{"North", "12000", "13500", "15000", "16200"},
					{"South", "9800", "9400", "10100", "11900"},
					{"East", "15300", "14800", "15900", "17400"},
					{"West", "7200", "8100", "8800", "9300"},
				},
			},
			{
				Name: "Headcount",
				Rows: [][]string{
					{"Team", "People", "Open roles"},
					{"Sales", "24", "3"},
					{"Support", "11", "1"},
					{"Engineering", "38", "6"},
				},
			},
			{Name: "Scratch"},
		},
	}

	return xlsx.WriteFile(wb, filepath.Join("testdata", "sample.xlsx"))
}

// generateLarge writes a sheet well past every default row cap.
func generateLarge() error {
	sheet := xlsx.Sheet{Name: "Orders", Rows: [][]string{{"Order", "Customer", "Amount"}}}
	for i := 1; i <= 1000; i++ {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.Itoa(10000 + i),
			"Customer " + strconv.Itoa(i%37),
			strconv.Itoa((i * 7919) % 5000),
		})
	}

	return xlsx.WriteFile(&xlsx.Workbook{Sheets: []xlsx.Sheet{sheet}}, filepath.Join("testdata", "large.xlsx"))
}
