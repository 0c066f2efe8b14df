// Package warehouse loads run files into Snowflake and exports the loaded
// tables as spreadsheets.
package warehouse

import (
	"database/sql"
	"fmt"

	"github.com/snowflakedb/gosnowflake"

	"github.com/bucsfan/sentiment-pipeline/internal/config"
)

const (
	ExtractTable  = "joebucs_extract"
	CommentsTable = "joebucs_comments"
)

// Open connects to the Snowflake account described by cfg.
func Open(cfg config.Snowflake) (*sql.DB, error) {
	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
	})
	if err != nil {
		return nil, fmt.Errorf("building snowflake DSN: %w", err)
	}
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening snowflake: %w", err)
	}
	return db, nil
}

// QualifiedTable returns database.schema.table.
func QualifiedTable(cfg config.Snowflake, table string) string {
	return cfg.Database + "." + cfg.Schema + "." + table
}
