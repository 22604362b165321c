package normalizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/domain/dto"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/metrics"
	"github.com/ougirez/facilities/internal/pkg/store"
)

// UnresolvedKeyWarning reports a rename rule whose old key was not in the record.
type UnresolvedKeyWarning struct {
	DataSource string
	OldKey     string
}

func (w UnresolvedKeyWarning) String() string {
	return fmt.Sprintf("rename rule '%s' not used in data source '%s'", w.OldKey, w.DataSource)
}

type Service struct {
	store store.KeyRenameStore
}

func NewNormalizerService(store store.KeyRenameStore) *Service {
	return &Service{store: store}
}

func (s *Service) RegisterKeyRename(ctx context.Context, dataSource, oldKey, newKey string) error {
	if dataSource == "" || oldKey == "" || newKey == "" {
		return fmt.Errorf("%w: data source, old key and new key are required", constants.ErrBadRequest)
	}

	err := s.store.UpsertKeyRename(ctx, &domain.KeyRename{DataSource: dataSource, OldKey: oldKey, NewKey: newKey})
	if err != nil {
		return fmt.Errorf("store.UpsertKeyRename: %w", err)
	}
	return nil
}

// RulesFor returns old key -> new key for a data source.
func (s *Service) RulesFor(ctx context.Context, dataSource string) (map[string]string, error) {
	renames, err := s.store.ListKeyRenames(ctx, dataSource)
	if err != nil {
		return nil, fmt.Errorf("store.ListKeyRenames: %w", err)
	}

	rules := make(map[string]string, len(renames))
	for _, r := range renames {
		rules[r.OldKey] = r.NewKey
	}
	return rules, nil
}

// Normalize renames the record's keys using the rules of dataSource, or of the
// record's own _data_source tag when dataSource is empty. A record without the
// tag is returned unchanged.
//
// Rules are applied in ascending old key order. Every matched old key is removed
// first, then the values are inserted under their new keys, so a new key that
// collides with an existing key overwrites it, and of two rules with the same
// new key the one with the greater old key wins.
func (s *Service) Normalize(ctx context.Context, record dto.RawRecord, dataSource string) (dto.RawRecord, []UnresolvedKeyWarning, error) {
	tag, ok := record.DataSource()
	if !ok {
		return record, nil, nil
	}
	if dataSource == "" {
		dataSource = tag
	}

	rules, err := s.RulesFor(ctx, dataSource)
	if err != nil {
		return nil, nil, err
	}

	return Apply(ctx, record, dataSource, rules), unresolved(record, dataSource, rules), nil
}

// Apply renames keys of a copy of record with rules. See Normalize for ordering.
func Apply(ctx context.Context, record dto.RawRecord, dataSource string, rules map[string]string) dto.RawRecord {
	out := record.Clone()

	oldKeys := make([]string, 0, len(rules))
	for oldKey := range rules {
		oldKeys = append(oldKeys, oldKey)
	}
	sort.Strings(oldKeys)

	type rename struct {
		newKey string
		value  any
	}
	renamed := make([]rename, 0, len(oldKeys))
	for _, oldKey := range oldKeys {
		value, ok := out[oldKey]
		if !ok {
			continue
		}
		renamed = append(renamed, rename{newKey: rules[oldKey], value: value})
		delete(out, oldKey)
	}

	for _, r := range renamed {
		if _, exists := out[r.newKey]; exists {
			logger.Debugf(ctx, "rename to '%s' overwrites an existing key in data source '%s'", r.newKey, dataSource)
		}
		out[r.newKey] = r.value
	}

	return out
}

func unresolved(record dto.RawRecord, dataSource string, rules map[string]string) []UnresolvedKeyWarning {
	var warnings []UnresolvedKeyWarning
	for oldKey := range rules {
		if _, ok := record[oldKey]; !ok {
			warnings = append(warnings, UnresolvedKeyWarning{DataSource: dataSource, OldKey: oldKey})
		}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].OldKey < warnings[j].OldKey })
	return warnings
}

// Report logs warnings and counts them. Unused rules never fail ingestion.
func Report(ctx context.Context, warnings []UnresolvedKeyWarning) {
	for _, w := range warnings {
		logger.Warnf(ctx, "%s", w.String())
		metrics.UnusedRenameRules.WithLabelValues(w.DataSource).Inc()
	}
}
