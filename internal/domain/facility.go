package domain

import "time"

// Facility is a surveyed school, clinic or similar site. It belongs to one LGA.
type Facility struct {
	FacilityID string    `db:"facility_id" json:"facility_id"`
	LGA        string    `db:"lga" json:"lga"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DataRecord is the value of one variable for one facility on one date.
type DataRecord struct {
	FacilityID   string    `json:"facility_id"`
	VariableSlug string    `json:"variable"`
	Date         time.Time `json:"date"`
	Value        Value     `json:"value"`
}

func (r DataRecord) DateString() string {
	if r.Date.IsZero() {
		return "No date"
	}
	return r.Date.Format("01/02/06")
}

// AllData is facility history: variable slug -> ISO date -> value.
type AllData = map[string]map[string]Value

// LatestData is variable slug -> most recent value.
type LatestData = map[string]Value

type KeyRename struct {
	DataSource string    `db:"data_source" json:"data_source"`
	OldKey     string    `db:"old_key" json:"old_key"`
	NewKey     string    `db:"new_key" json:"new_key"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
