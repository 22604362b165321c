package domain

import (
	"encoding/json"
	"time"

	"github.com/ougirez/facilities/internal/pkg/formula"
)

// Variable is a named, typed observable fact. Slug is its identity.
// Calculated variables carry a non-empty Formula.
type Variable struct {
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	DataType    DataType  `db:"data_type" json:"data_type"`
	Description string    `db:"description" json:"description"`
	Formula     string    `db:"formula" json:"formula,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

func (v Variable) IsCalculated() bool {
	return v.Formula != ""
}

// Cast converts raw to the variable's declared type.
func (v Variable) Cast(raw any) (Value, error) {
	val, err := Cast(v.DataType, raw)
	if err != nil {
		if ute, ok := err.(*UnsupportedTypeError); ok {
			ute.Variable = &v
		}
		return Value{}, err
	}
	return val, nil
}

func (v Variable) ToDict() map[string]any {
	d := map[string]any{
		"name":        v.Name,
		"slug":        v.Slug,
		"data_type":   string(v.DataType),
		"description": v.Description,
	}
	if v.IsCalculated() {
		d["formula"] = v.Formula
	}
	return d
}

func (v Variable) String() string {
	b, err := json.Marshal(v.ToDict())
	if err != nil {
		return v.Slug
	}
	return string(b)
}

// CalculatedVariable is a variable whose value is derived from other variables'
// latest values.
type CalculatedVariable struct {
	Variable
	Program *formula.Formula
}
