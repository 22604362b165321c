package dto

import "github.com/ougirez/facilities/internal/domain"

type RegisterVariableRequest struct {
	Slug        string `json:"slug" validate:"required,max=64"`
	Name        string `json:"name" validate:"max=64"`
	DataType    string `json:"data_type" validate:"required,oneof=float boolean string"`
	Description string `json:"description" validate:"max=255"`
	Formula     string `json:"formula"`
}

func (r *RegisterVariableRequest) ToDomain() domain.Variable {
	return domain.Variable{
		Slug:        r.Slug,
		Name:        r.Name,
		DataType:    domain.DataType(r.DataType),
		Description: r.Description,
		Formula:     r.Formula,
	}
}

type RegisterKeyRenameRequest struct {
	DataSource string `json:"data_source" validate:"required,max=64"`
	OldKey     string `json:"old_key" validate:"required,max=64"`
	NewKey     string `json:"new_key" validate:"required,max=64"`
}

type RegisterFacilityRequest struct {
	FacilityID string `json:"facility_id" validate:"required,max=100"`
	LGA        string `json:"lga"`
}

type WriteRecordRequest struct {
	Variable string `json:"variable" validate:"required"`
	Value    any    `json:"value"`
	// Date is YYYY-MM-DD; empty means today.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type NormalizeRequest struct {
	DataSource string    `json:"data_source"`
	Record     RawRecord `json:"record" validate:"required"`
}

type NormalizeResponse struct {
	Record      RawRecord `json:"record"`
	UnusedRules []string  `json:"unused_rules,omitempty"`
}

type IngestRequest struct {
	Records []RawRecord `json:"records" validate:"required,min=1"`
}

type AggregateResponse struct {
	Variable string   `json:"variable"`
	LGA      string   `json:"lga"`
	Value    *float64 `json:"value"`
}

type LatestValueResponse struct {
	Variable string       `json:"variable"`
	Value    domain.Value `json:"value"`
	Found    bool         `json:"found"`
}
