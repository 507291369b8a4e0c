package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"tasksync/internal/task"

	"github.com/xuri/excelize/v2"
)

var headers = []string{"Title", "Description", "Status", "Created", "Updated"}

func statusText(t task.Task) string {
	if t.Completed {
		return "done"
	}
	return "pending"
}

func updatedText(t task.Task) string {
	if t.UpdatedAt == nil {
		return ""
	}
	return t.UpdatedAt.Format("2006-01-02 15:04")
}

// WriteCSV writes the task list as CSV, in the given order.
func WriteCSV(w io.Writer, tasks []task.Task) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range tasks {
		record := []string{
			t.Title,
			t.Description,
			statusText(t),
			t.CreatedAt.Format("2006-01-02 15:04"),
			updatedText(t),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the task list as an XLSX workbook.
func WriteXLSX(w io.Writer, tasks []task.Task) error {
	f := excelize.NewFile()
	sheetName := "Tasks"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
	}

	for idx, t := range tasks {
		row := idx + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.Title)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.Description)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), statusText(t))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), t.CreatedAt.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), updatedText(t))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 30)
	_ = f.SetColWidth(sheetName, "B", "B", 40)
	_ = f.SetColWidth(sheetName, "C", "C", 10)
	_ = f.SetColWidth(sheetName, "D", "E", 18)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
