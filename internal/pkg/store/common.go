package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ougirez/facilities/internal/pkg/constants"
)

const (
	tableFacilities      = "facilities"
	tableVariables       = "variables"
	tableFacilityRecords = "facility_records"
	tableKeyRenames      = "key_renames"
)

//go:embed schema.sql
var schemaDDL string

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return fmt.Errorf("%w: %w", v, err)
		}
	}
	return err
}

const pgForeignKeyViolation = "23503"

// wrapRecordErr reports a facility_records row pointing at a missing facility
// or variable as not found.
func wrapRecordErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return wrapErr(err)
	}
	if strings.Contains(pgErr.ConstraintName, "variable_slug") {
		return fmt.Errorf("%w: %w", constants.ErrVariableNotFound, err)
	}
	return fmt.Errorf("%w: %w", constants.ErrFacilityNotFound, err)
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EnsureSchema creates missing tables. It never alters existing ones.
func EnsureSchema(ctx context.Context, pool Pool) error {
	for _, stmt := range strings.Split(schemaDDL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}
