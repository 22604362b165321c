package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/pkg/constants"
)

// RawRecord is one submitted survey form flattened to field -> value. Keys
// starting with "_" describe the record itself.
type RawRecord map[string]any

func (r RawRecord) str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (r RawRecord) DataSource() (string, bool) {
	_, ok := r[constants.RecordKeyDataSource]
	return r.str(constants.RecordKeyDataSource), ok
}

func (r RawRecord) FacilityID() string {
	return r.str(constants.RecordKeyFacilityID)
}

func (r RawRecord) LGA() string {
	return r.str(constants.RecordKeyLGA)
}

// Date returns the observation date, or the zero time when the record has none.
func (r RawRecord) Date() (time.Time, error) {
	switch v := r[constants.RecordKeyDate].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return domain.TruncateDate(v), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return time.Time{}, nil
		}
		return domain.ParseDate(strings.TrimSpace(v))
	default:
		return time.Time{}, fmt.Errorf("unsupported %s value %v (%T)", constants.RecordKeyDate, v, v)
	}
}

// DecodeRecords reads a JSON array of records. Numbers stay json.Number so
// large numeric ids survive intact.
func DecodeRecords(r io.Reader) ([]RawRecord, error) {
	dec := sonic.ConfigStd.NewDecoder(r)
	dec.UseNumber()

	var records []RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, "_")
}

// Clone returns a shallow copy.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FacilitySnapshot accumulates the values written for one facility while a
// record is being built. It is owned by the goroutine building that record.
type FacilitySnapshot struct {
	FacilityID string
	LGA        string
	Date       time.Time

	values domain.LatestData
}

func NewFacilitySnapshot(facilityID, lga string, date time.Time) *FacilitySnapshot {
	return &FacilitySnapshot{
		FacilityID: facilityID,
		LGA:        lga,
		Date:       date,
		values:     make(domain.LatestData),
	}
}

func (fs *FacilitySnapshot) Put(slug string, value domain.Value) {
	fs.values[slug] = value
}

func (fs *FacilitySnapshot) Values() domain.LatestData {
	out := make(domain.LatestData, len(fs.values))
	for k, v := range fs.values {
		out[k] = v
	}
	return out
}
