package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

// Querier runs statements that return rows. *sql.DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Exporter dumps whole tables into one workbook per table.
type Exporter struct {
	db     Querier
	tables []string
	dir    string
}

// NewExporter exports each of tables into dir. Table names may be qualified;
// the workbook is named after the last component.
func NewExporter(db Querier, dir string, tables ...string) *Exporter {
	return &Exporter{db: db, dir: dir, tables: tables}
}

func (e *Exporter) Export(ctx context.Context, run *models.RunContext) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	for _, table := range e.tables {
		path := filepath.Join(e.dir, baseTable(table)+".xlsx")
		if err := e.exportTable(ctx, table, path); err != nil {
			return err
		}
		run.Manifest.ExportFiles = append(run.Manifest.ExportFiles, path)
		slog.Info("Exported table", "table", table, "path", path)
	}
	return nil
}

func (e *Exporter) exportTable(ctx context.Context, table, path string) error {
	rows, err := e.db.QueryContext(ctx, "SELECT * FROM "+table+";")
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", table, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %s: %w", table, err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	rowNum := 2
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning %s: %w", table, err)
		}
		row := make([]any, len(cols))
		for i, v := range values {
			row[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", rowNum, table, err)
		}
		rowNum++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", table, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	default:
		return t
	}
}

func baseTable(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}
