package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
)

var variableColumns = []string{"slug", "name", "data_type", "description", "formula", "created_at", "updated_at"}

func upsertVariableQuery(v *domain.Variable) sq.InsertBuilder {
	return builder().Insert(tableVariables).
		Columns("slug", "name", "data_type", "description", "formula").
		Values(v.Slug, v.Name, string(v.DataType), v.Description, v.Formula).
		Suffix(`
on conflict (slug)
do update
set
	name = excluded.name,
	data_type = excluded.data_type,
	description = excluded.description,
	formula = excluded.formula,
	updated_at = now()`)
}

func (s *store) UpsertVariable(ctx context.Context, v *domain.Variable) error {
	if _, err := s.pool.Execx(ctx, upsertVariableQuery(v)); err != nil {
		logger.Errorf(ctx, "upsert variable %s: %s", v.Slug, err.Error())
		return fmt.Errorf("upsert variable, slug-%s: %w", v.Slug, err)
	}
	return nil
}

func (s *store) ListVariables(ctx context.Context) ([]*domain.Variable, error) {
	query := builder().Select(variableColumns...).
		From(tableVariables).
		OrderBy("slug")

	selected, err := xpgx.Selectx[domain.Variable](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}
