package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"uetingest/internal"
	"uetingest/internal/storage"
)

// ExportReportToXLSX writes the per-row outcomes of a run to a review sheet,
// skipped rows first.
func ExportReportToXLSX(rows []internal.ReportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"line_no", "source", "source_ref", "raw_line", "status", "reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.LineNo)
		set(2, row.Source)
		set(3, row.SourceRef)
		set(4, row.RawLine)
		set(5, row.Status)
		set(6, row.Reason)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// SeedCoursesFromXLSX loads the authoritative course list from a sheet of
// (code, name, credit) rows. The pipeline itself never creates courses;
// this is how the reference data gets in. Returns the number of upserted
// courses.
func SeedCoursesFromXLSX(db *storage.DB, inputPath string) (int, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, cells := range rows {
			if len(cells) < 2 {
				continue
			}
			code := strings.TrimSpace(cells[0])
			name := strings.TrimSpace(cells[1])
			if code == "" || name == "" || strings.EqualFold(code, "code") {
				continue
			}
			credit := 0
			if len(cells) > 2 {
				if parsed, err := parseInt(cells[2]); err == nil {
					credit = parsed
				}
			}
			if err := db.UpsertCourse(code, name, credit); err != nil {
				return count, err
			}
			count++
		}
	}

	fmt.Printf("seeded %d courses from %s\n", count, filepath.Base(inputPath))
	return count, nil
}
