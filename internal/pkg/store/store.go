package store

import (
	"context"
	"time"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// Store is the persistence collaborator. Implementations must make UpsertRecord
// an atomic upsert keyed by (facility, variable, date).
type Store interface {
	VariableStore
	FacilityStore
	RecordStore
	KeyRenameStore
}

type VariableStore interface {
	UpsertVariable(ctx context.Context, variable *domain.Variable) error
	ListVariables(ctx context.Context) ([]*domain.Variable, error)
}

type FacilityStore interface {
	UpsertFacility(ctx context.Context, facility *domain.Facility) (*domain.Facility, error)
	GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error)
	ListFacilitiesByLGA(ctx context.Context, lga string) ([]*domain.Facility, error)
}

type RecordStore interface {
	UpsertRecord(ctx context.Context, record *domain.DataRecord) error
	ListRecords(ctx context.Context, opts ListRecordsOpts) ([]*domain.DataRecord, error)
	ListDates(ctx context.Context, facilityID string) ([]time.Time, error)
}

type KeyRenameStore interface {
	UpsertKeyRename(ctx context.Context, rename *domain.KeyRename) error
	ListKeyRenames(ctx context.Context, dataSource string) ([]*domain.KeyRename, error)
}

// ListRecordsOpts filters records. Nil fields are not filtered on.
type ListRecordsOpts struct {
	FacilityID   *string
	LGA          *string
	VariableSlug *string
	// DateDesc orders by date descending; records sharing a date have no
	// guaranteed order.
	DateDesc bool
	Limit    uint64
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}
