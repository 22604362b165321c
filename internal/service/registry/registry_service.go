package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/store"
)

// Service owns the variable schema. Readers take an immutable snapshot via
// Schema; registrations publish a new snapshot.
type Service struct {
	store  store.VariableStore
	mu     sync.Mutex
	schema atomic.Pointer[domain.Schema]
}

func NewRegistryService(store store.VariableStore) *Service {
	s := &Service{store: store}
	s.schema.Store(domain.EmptySchema())
	return s
}

// Load replaces the current schema with the variables persisted in the store.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	variables, err := s.store.ListVariables(ctx)
	if err != nil {
		return fmt.Errorf("store.ListVariables: %w", err)
	}

	list := make([]domain.Variable, 0, len(variables))
	for _, v := range variables {
		list = append(list, *v)
	}

	schema, err := domain.NewSchema(s.schema.Load().Version()+1, list)
	if err != nil {
		return fmt.Errorf("domain.NewSchema: %w", err)
	}

	s.schema.Store(schema)
	logger.Infof(ctx, "loaded schema v%d with %d variables", schema.Version(), schema.Len())
	return nil
}

func (s *Service) Schema() *domain.Schema {
	return s.schema.Load()
}

// RegisterVariable declares a raw variable.
func (s *Service) RegisterVariable(ctx context.Context, v domain.Variable) (*domain.Variable, error) {
	if v.Formula != "" {
		return nil, fmt.Errorf("%w: raw variable %s must not carry a formula", constants.ErrBadRequest, v.Slug)
	}
	return s.register(ctx, v)
}

// RegisterCalculatedVariable declares a variable derived by formula. The formula
// is parsed and its references resolved against the current schema here, not
// when it is first evaluated. Data type defaults to float.
func (s *Service) RegisterCalculatedVariable(ctx context.Context, v domain.Variable) (*domain.Variable, error) {
	if strings.TrimSpace(v.Formula) == "" {
		return nil, fmt.Errorf("%w: calculated variable %s needs a formula", constants.ErrInvalidFormula, v.Slug)
	}
	if v.DataType == "" {
		v.DataType = domain.DataTypeFloat
	}
	return s.register(ctx, v)
}

func (s *Service) register(ctx context.Context, v domain.Variable) (*domain.Variable, error) {
	v.Slug = strings.TrimSpace(v.Slug)
	if v.Slug == "" || strings.ContainsAny(v.Slug, " \t\r\n") {
		return nil, fmt.Errorf("%w: invalid slug %q", constants.ErrBadRequest, v.Slug)
	}
	if v.Name == "" {
		v.Name = v.Slug
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.schema.Load()
	if existing, ok := current.Variable(v.Slug); ok && existing.DataType != v.DataType {
		return nil, fmt.Errorf("%w: %s is declared as %s", constants.ErrDuplicateVariable, v.Slug, existing.DataType)
	}
	if existing, ok := current.Variable(v.Slug); ok && existing.IsCalculated() != v.IsCalculated() {
		return nil, fmt.Errorf("%w: %s is declared as %s", constants.ErrDuplicateVariable, v.Slug, kind(existing))
	}

	next, err := current.With(v)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertVariable(ctx, &v); err != nil {
		return nil, fmt.Errorf("store.UpsertVariable: %w", err)
	}

	s.schema.Store(next)
	logger.Debugf(ctx, "registered variable %s (%s), schema v%d", v.Slug, v.DataType, next.Version())

	registered, _ := next.Variable(v.Slug)
	return &registered, nil
}

func kind(v domain.Variable) string {
	if v.IsCalculated() {
		return "a calculated variable"
	}
	return "a raw variable"
}

// Cast converts raw to dataType.
func (s *Service) Cast(dataType domain.DataType, raw any) (domain.Value, error) {
	return domain.Cast(dataType, raw)
}
