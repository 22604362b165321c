package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
)

var keyRenameColumns = []string{"data_source", "old_key", "new_key", "created_at"}

func (s *store) UpsertKeyRename(ctx context.Context, rename *domain.KeyRename) error {
	query := builder().Insert(tableKeyRenames).
		Columns("data_source", "old_key", "new_key").
		Values(rename.DataSource, rename.OldKey, rename.NewKey).
		Suffix(`on conflict (data_source, old_key) do update set new_key = excluded.new_key`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("upsert key rename, data_source-%s, old_key-%s: %w", rename.DataSource, rename.OldKey, err)
	}
	return nil
}

func (s *store) ListKeyRenames(ctx context.Context, dataSource string) ([]*domain.KeyRename, error) {
	query := builder().Select(keyRenameColumns...).
		From(tableKeyRenames).
		Where(sq.Eq{"data_source": dataSource}).
		OrderBy("old_key")

	selected, err := xpgx.Selectx[domain.KeyRename](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}
