package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bucsfan/sentiment-pipeline/internal/config"
	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

// Execer runs statements that return no rows. *sql.DB satisfies it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Loader copies a run's staged CSV files into the extract and comment tables.
type Loader struct {
	db  Execer
	cfg config.Snowflake
}

func NewLoader(db Execer, cfg config.Snowflake) *Loader {
	return &Loader{db: db, cfg: cfg}
}

// CopyStatement builds the COPY INTO statement for one staged file.
func (l *Loader) CopyStatement(table, file string) string {
	return fmt.Sprintf("COPY INTO %s FROM @%s/%s ON_ERROR = CONTINUE FILE_FORMAT = %s;",
		QualifiedTable(l.cfg, table), l.cfg.Stage, filepath.Base(file), l.cfg.FileFormat)
}

// Load runs the article copy then the comment copy. The first failure aborts.
func (l *Loader) Load(ctx context.Context, run *models.RunContext) error {
	steps := []struct {
		table string
		file  string
	}{
		{ExtractTable, run.ArticlesName()},
		{CommentsTable, run.CommentsName()},
	}
	for _, s := range steps {
		stmt := l.CopyStatement(s.table, s.file)
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("loading %s into %s: %w", s.file, s.table, err)
		}
		slog.Info("Loaded file into warehouse", "file", s.file, "table", s.table)
	}
	run.Manifest.Loaded = true
	return nil
}
