package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"loan-origination/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schemaSQL string

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db execer, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Ensuring database schema")
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		logger.ErrorContext(ctx, "Failed to apply database schema", "error", err)
		return fmt.Errorf("%w: failed to apply schema: %w", apperrors.ErrDatabase, err)
	}
	logger.InfoContext(ctx, "Database schema is up to date")
	return nil
}
