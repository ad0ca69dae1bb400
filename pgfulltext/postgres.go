package pgfulltext

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

var schemaNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateSchemaName rejects names that would need quoting in search_path.
func ValidateSchemaName(name string) error {
	if !schemaNameRe.MatchString(name) {
		return fmt.Errorf("invalid postgres schema name %q (must match %s)", name, schemaNameRe.String())
	}
	return nil
}

// Connect opens a pgx-backed *sql.DB whose search_path lists schemas first,
// with public as a fallback for built-ins.
func Connect(ctx context.Context, dsn string, schemas []string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, Wrap(ErrSQL, "parse database url", err)
	}
	path := make([]string, 0, len(schemas)+1)
	for _, s := range schemas {
		if err := ValidateSchemaName(s); err != nil {
			return nil, Wrap(ErrSchema, "connect", err)
		}
		path = append(path, `"`+s+`"`)
	}
	path = append(path, "public")
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = make(map[string]string)
	}
	cfg.RuntimeParams["search_path"] = strings.Join(path, ",")

	db := stdlib.OpenDB(*cfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Wrap(ErrSQL, "connect to database", err)
	}
	return db, nil
}
