package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/logger"
)

type SeedVariable struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	DataType    string `yaml:"data_type"`
	Description string `yaml:"description"`
	Formula     string `yaml:"formula"`
}

func (v SeedVariable) toDomain() domain.Variable {
	return domain.Variable{
		Slug:        v.Slug,
		Name:        v.Name,
		DataType:    domain.DataType(v.DataType),
		Description: v.Description,
		Formula:     v.Formula,
	}
}

type SeedKeyRename struct {
	DataSource string `yaml:"data_source"`
	OldKey     string `yaml:"old_key"`
	NewKey     string `yaml:"new_key"`
}

// Seed is a schema file: variables, calculated variables and key renames.
type Seed struct {
	Variables           []SeedVariable  `yaml:"variables"`
	CalculatedVariables []SeedVariable  `yaml:"calculated_variables"`
	KeyRenames          []SeedKeyRename `yaml:"key_renames"`
}

func LoadSeed(r io.Reader) (*Seed, error) {
	seed := new(Seed)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml.Decode: %w", err)
	}
	return seed, nil
}

// ApplySeed registers everything in seed. Calculated variables may be listed in
// any order; ones that reference a not yet registered variable are retried
// after the others.
func (s *Service) ApplySeed(ctx context.Context, seed *Seed) error {
	for _, v := range seed.Variables {
		if _, err := s.Registry.RegisterVariable(ctx, v.toDomain()); err != nil {
			return fmt.Errorf("register variable %s: %w", v.Slug, err)
		}
	}

	pending := seed.CalculatedVariables
	for len(pending) > 0 {
		var (
			failed  []SeedVariable
			lastErr error
		)
		for _, v := range pending {
			if _, err := s.Registry.RegisterCalculatedVariable(ctx, v.toDomain()); err != nil {
				failed = append(failed, v)
				lastErr = fmt.Errorf("register calculated variable %s: %w", v.Slug, err)
			}
		}
		if len(failed) == len(pending) {
			return lastErr
		}
		pending = failed
	}

	for _, r := range seed.KeyRenames {
		if err := s.Normalizer.RegisterKeyRename(ctx, r.DataSource, r.OldKey, r.NewKey); err != nil {
			return fmt.Errorf("register key rename %s/%s: %w", r.DataSource, r.OldKey, err)
		}
	}

	logger.Infof(ctx, "seeded %d variables, %d calculated variables, %d key renames",
		len(seed.Variables), len(seed.CalculatedVariables), len(seed.KeyRenames))
	return nil
}
