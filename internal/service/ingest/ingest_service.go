package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ougirez/facilities/internal/domain"
	"github.com/ougirez/facilities/internal/domain/dto"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/metrics"
	"github.com/ougirez/facilities/internal/service/calculator"
	"github.com/ougirez/facilities/internal/service/facility"
	"github.com/ougirez/facilities/internal/service/normalizer"
	"github.com/ougirez/facilities/internal/service/registry"
)

const (
	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
)

type Options struct {
	// Workers bounds how many records of a batch are built at once.
	Workers int
	// Retries is how many times a failed store call is retried.
	Retries uint64
	// RetryInterval is the pause between retries.
	RetryInterval time.Duration
}

// Result describes what was stored for one raw record.
type Result struct {
	FacilityID  string            `json:"facility_id,omitempty"`
	Date        string            `json:"date,omitempty"`
	Values      domain.LatestData `json:"values,omitempty"`
	Calculated  domain.LatestData `json:"calculated,omitempty"`
	Skipped     []string          `json:"skipped,omitempty"`
	UnusedRules []string          `json:"unused_rules,omitempty"`
	// Errors maps a variable slug to the reason its value was not stored.
	Errors map[string]string `json:"errors,omitempty"`
	// Error is set when nothing could be stored for the record.
	Error string `json:"error,omitempty"`
}

func (r *Result) outcome() string {
	switch {
	case r.Error != "":
		return outcomeFailed
	case len(r.Errors) > 0:
		return outcomePartial
	}
	return outcomeOK
}

// Service builds facilities from raw survey records: normalize, upsert the
// facility, write every known variable, then compute calculated variables.
type Service struct {
	registry   *registry.Service
	normalizer *normalizer.Service
	facilities *facility.Service
	calculator *calculator.Service
	opts       Options
}

func NewIngestService(
	registry *registry.Service,
	normalizer *normalizer.Service,
	facilities *facility.Service,
	calculator *calculator.Service,
	opts Options,
) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 10 * time.Millisecond
	}
	return &Service{
		registry:   registry,
		normalizer: normalizer,
		facilities: facilities,
		calculator: calculator,
		opts:       opts,
	}
}

// retry runs op until it succeeds, fails permanently, or retries run out.
// Errors carrying a status code are client errors and are not retried.
func (s *Service) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(
		func() error {
			err := op()
			var coded *constants.CodedError
			if err != nil && errors.As(err, &coded) {
				return backoff.Permanent(err)
			}
			return err
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryInterval), s.opts.Retries),
			ctx,
		),
	)
}

// CreateFacilityFromRecord stores one raw record. Values that fail to cast are
// reported in Result.Errors and do not stop the other values. The returned error
// is set when the record as a whole cannot be stored.
func (s *Service) CreateFacilityFromRecord(ctx context.Context, raw dto.RawRecord) (*Result, error) {
	record, warnings, err := s.normalizer.Normalize(ctx, raw, "")
	if err != nil {
		return nil, fmt.Errorf("normalizer.Normalize: %w", err)
	}
	normalizer.Report(ctx, warnings)

	facilityID := record.FacilityID()
	if facilityID == "" {
		return nil, fmt.Errorf("%w: record has no %s", constants.ErrBadRequest, constants.RecordKeyFacilityID)
	}

	date, err := record.Date()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrBadRequest, err)
	}
	if date.IsZero() {
		date = domain.Today()
	}

	result := &Result{
		FacilityID: facilityID,
		Date:       domain.DateISO(date),
		Errors:     make(map[string]string),
	}
	for _, w := range warnings {
		result.UnusedRules = append(result.UnusedRules, w.OldKey)
	}

	err = s.retry(ctx, func() error {
		_, err := s.facilities.RegisterFacility(ctx, facilityID, record.LGA())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("facilities.RegisterFacility, facility_id-%s: %w", facilityID, err)
	}

	schema := s.registry.Schema()
	snapshot := dto.NewFacilitySnapshot(facilityID, record.LGA(), date)

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if dto.IsReservedKey(key) {
			continue
		}
		variable, ok := schema.Variable(key)
		if !ok || variable.IsCalculated() {
			logger.Debugf(ctx, "facility %s: skipping unknown key %s", facilityID, key)
			result.Skipped = append(result.Skipped, key)
			continue
		}

		value, err := variable.Cast(record[key])
		if err != nil {
			metrics.CastFailures.WithLabelValues(string(variable.DataType)).Inc()
			result.Errors[key] = err.Error()
			continue
		}

		err = s.retry(ctx, func() error {
			_, err := s.facilities.WriteValue(ctx, facilityID, variable, value, date)
			return err
		})
		if err != nil {
			result.Errors[key] = err.Error()
			continue
		}
		snapshot.Put(key, value)
	}
	result.Values = snapshot.Values()

	if err := s.calculate(ctx, snapshot, result); err != nil {
		return nil, err
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

func (s *Service) calculate(ctx context.Context, snapshot *dto.FacilitySnapshot, result *Result) error {
	if len(s.registry.Schema().Calculated()) == 0 {
		return nil
	}

	latest, err := s.facilities.LatestData(ctx, snapshot.FacilityID)
	if err != nil {
		return fmt.Errorf("facilities.LatestData, facility_id-%s: %w", snapshot.FacilityID, err)
	}
	// Values of this record win over later-dated stored values.
	for slug, value := range snapshot.Values() {
		latest[slug] = value
	}

	schema := s.registry.Schema()
	calculated := s.calculator.Calculate(ctx, latest)
	result.Calculated = make(domain.LatestData, len(calculated))
	for slug, value := range calculated {
		variable, ok := schema.Variable(slug)
		if !ok {
			continue
		}
		err := s.retry(ctx, func() error {
			_, err := s.facilities.WriteValue(ctx, snapshot.FacilityID, variable, value, snapshot.Date)
			return err
		})
		if err != nil {
			result.Errors[slug] = err.Error()
			continue
		}
		result.Calculated[slug] = value
	}
	return nil
}

// IngestBatch builds every record with at most Options.Workers in flight.
// Results are in input order; a record that fails gets Result.Error instead
// of failing the batch. Only context cancellation aborts the batch.
func (s *Service) IngestBatch(ctx context.Context, records []dto.RawRecord) ([]*Result, error) {
	results := make([]*Result, len(records))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.Workers)
	for i, record := range records {
		i, record := i, record
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			result, err := s.CreateFacilityFromRecord(egCtx, record)
			if err != nil {
				if ctxErr := egCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warnf(egCtx, "record %d: %v", i, err)
				result = &Result{FacilityID: record.FacilityID(), Error: err.Error()}
			}

			metrics.IngestedRecords.WithLabelValues(result.outcome()).Inc()
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("err in goroutine: %w", err)
	}

	logger.Infof(ctx, "ingested %d records", len(records))
	return results, nil
}
