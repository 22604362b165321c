package domain

import (
	"fmt"
	"sort"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/formula"
)

// Schema is an immutable snapshot of the registered variables. Registering a
// variable produces a new Schema with a higher version; readers keep using the
// snapshot they were handed.
type Schema struct {
	version    int64
	variables  map[string]Variable
	calculated []*CalculatedVariable
}

func EmptySchema() *Schema {
	return &Schema{variables: map[string]Variable{}}
}

// NewSchema validates variables and compiles calculated formulas. Formulas may
// only reference variables of the same schema and must not be cyclic.
func NewSchema(version int64, variables []Variable) (*Schema, error) {
	s := &Schema{
		version:   version,
		variables: make(map[string]Variable, len(variables)),
	}

	for _, v := range variables {
		if !v.DataType.Valid() {
			v := v
			return nil, &UnsupportedTypeError{DataType: v.DataType, Variable: &v}
		}
		s.variables[v.Slug] = v
	}

	programs := make(map[string]*CalculatedVariable)
	for _, v := range s.variables {
		if !v.IsCalculated() {
			continue
		}
		program, err := formula.Parse(v.Formula)
		if err != nil {
			return nil, fmt.Errorf("%w: variable %s: %w", constants.ErrInvalidFormula, v.Slug, err)
		}
		for _, ref := range program.References() {
			if _, ok := s.variables[ref]; !ok {
				return nil, fmt.Errorf("%w: variable %s references unknown variable %s", constants.ErrInvalidFormula, v.Slug, ref)
			}
		}
		programs[v.Slug] = &CalculatedVariable{Variable: v, Program: program}
	}

	ordered, err := dependencyOrder(programs)
	if err != nil {
		return nil, err
	}
	s.calculated = ordered

	return s, nil
}

// dependencyOrder sorts calculated variables so that every variable comes after
// the calculated variables its formula reads. Ties are broken by slug.
func dependencyOrder(programs map[string]*CalculatedVariable) ([]*CalculatedVariable, error) {
	slugs := make([]string, 0, len(programs))
	for slug := range programs {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(programs))
	ordered := make([]*CalculatedVariable, 0, len(programs))

	var visit func(slug string) error
	visit = func(slug string) error {
		switch state[slug] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: cyclic reference through %s", constants.ErrInvalidFormula, slug)
		}
		state[slug] = visiting
		for _, ref := range programs[slug].Program.References() {
			if _, ok := programs[ref]; ok {
				if err := visit(ref); err != nil {
					return err
				}
			}
		}
		state[slug] = done
		ordered = append(ordered, programs[slug])
		return nil
	}

	for _, slug := range slugs {
		if err := visit(slug); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func (s *Schema) Version() int64 {
	return s.version
}

func (s *Schema) Variable(slug string) (Variable, bool) {
	v, ok := s.variables[slug]
	return v, ok
}

// Variables returns every variable sorted by slug.
func (s *Schema) Variables() []Variable {
	out := make([]Variable, 0, len(s.variables))
	for _, v := range s.variables {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Calculated returns calculated variables in evaluation order.
func (s *Schema) Calculated() []*CalculatedVariable {
	out := make([]*CalculatedVariable, len(s.calculated))
	copy(out, s.calculated)
	return out
}

// With returns the next schema version with v added or replaced.
func (s *Schema) With(v Variable) (*Schema, error) {
	variables := make([]Variable, 0, len(s.variables)+1)
	for slug, existing := range s.variables {
		if slug != v.Slug {
			variables = append(variables, existing)
		}
	}
	variables = append(variables, v)
	return NewSchema(s.version+1, variables)
}

func (s *Schema) Len() int {
	return len(s.variables)
}
