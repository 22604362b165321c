package calculator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/formula"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/metrics"
)

type SchemaProvider interface {
	Schema() *domain.Schema
}

// Service evaluates calculated variables against a facility's latest values.
// Evaluation never fails: a formula that cannot produce a value yields absent.
type Service struct {
	schemas SchemaProvider
}

func NewCalculatorService(schemas SchemaProvider) *Service {
	return &Service{schemas: schemas}
}

// ErrFormulaEvaluation marks a formula that produced no value for a reason
// other than a missing input.
var ErrFormulaEvaluation = errors.New("formula evaluation failure")

// AdHocFormula labels failures of formulas evaluated outside the schema.
const AdHocFormula = "_adhoc"

// Evaluate parses and evaluates an ad hoc formula. Malformed formulas are absent.
func (s *Service) Evaluate(ctx context.Context, src string, latest domain.LatestData) (domain.Value, bool) {
	program, err := formula.Parse(src)
	if err != nil {
		return s.fail(ctx, AdHocFormula, fmt.Errorf("formula %q: %w: %w", src, ErrFormulaEvaluation, err))
	}

	result, err := s.eval(program, latest)
	if err != nil {
		return s.fail(ctx, AdHocFormula, fmt.Errorf("formula %q: %w", src, err))
	}
	return domain.FloatValue(result), true
}

// EvaluateVariable computes one calculated variable, converted to its declared type.
func (s *Service) EvaluateVariable(ctx context.Context, cv *domain.CalculatedVariable, latest domain.LatestData) (domain.Value, bool) {
	result, err := s.eval(cv.Program, latest)
	if err != nil {
		return s.fail(ctx, cv.Slug, fmt.Errorf("calculated variable %s: %w", cv.Slug, err))
	}

	value, err := cv.Cast(result)
	if err != nil {
		return s.fail(ctx, cv.Slug, fmt.Errorf("calculated variable %s: %w: %w", cv.Slug, ErrFormulaEvaluation, err))
	}
	return value, true
}

func (s *Service) eval(program *formula.Formula, latest domain.LatestData) (float64, error) {
	result, err := program.Eval(resolver(latest))
	if err != nil && !errors.Is(err, formula.ErrMissingReference) {
		return 0, fmt.Errorf("%w: %w", ErrFormulaEvaluation, err)
	}
	return result, err
}

// fail reports an evaluation that yields absent. Missing inputs are routine
// and only logged at debug level.
func (s *Service) fail(ctx context.Context, label string, err error) (domain.Value, bool) {
	if errors.Is(err, ErrFormulaEvaluation) {
		metrics.FormulaFailures.WithLabelValues(label).Inc()
		logger.Warnf(ctx, "%v", err)
	} else {
		logger.Debugf(ctx, "%v", err)
	}
	return domain.Value{}, false
}

// Calculate evaluates every calculated variable of the current schema in
// dependency order, so one calculated variable may read another. Only the
// values that could be computed are returned.
func (s *Service) Calculate(ctx context.Context, latest domain.LatestData) domain.LatestData {
	working := make(domain.LatestData, len(latest))
	for slug, value := range latest {
		working[slug] = value
	}

	out := make(domain.LatestData)
	for _, cv := range s.schemas.Schema().Calculated() {
		value, ok := s.EvaluateVariable(ctx, cv, working)
		if !ok {
			// A stale stored value must not feed later formulas.
			delete(working, cv.Slug)
			continue
		}
		working[cv.Slug] = value
		out[cv.Slug] = value
	}
	return out
}

func resolver(latest domain.LatestData) formula.Resolver {
	return func(slug string) (float64, bool) {
		value, ok := latest[slug]
		if !ok {
			return 0, false
		}
		return value.Numeric()
	}
}
