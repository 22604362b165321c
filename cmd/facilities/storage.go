package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/store"
	"github.com/ougirez/facilities/internal/pkg/store/memstore"
	"github.com/ougirez/facilities/internal/pkg/store/xpgx"
	"github.com/ougirez/facilities/internal/service"
	"github.com/ougirez/facilities/internal/service/ingest"
)

// openStore returns the configured store and a func releasing it.
func openStore(ctx context.Context) (store.Store, func(), error) {
	switch driver := viper.GetString(constants.ViperStorageDriverKey); driver {
	case constants.StorageDriverMemory:
		logger.Warnf(ctx, "using in-memory storage, data is lost on exit")
		return memstore.New(), func() {}, nil
	case constants.StorageDriverPostgres:
		pool, err := xpgx.Connect(ctx, xpgx.Options{
			DSN:            viper.GetString(constants.ViperPostgresDSNKey),
			MaxConns:       viper.GetInt32(constants.ViperPostgresMaxConnsKey),
			ConnectRetries: viper.GetUint64(constants.ViperPostgresConnectRetriesKey),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("xpgx.Connect: %w", err)
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("store.EnsureSchema: %w", err)
		}
		return store.NewStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown %s %q", constants.ViperStorageDriverKey, driver)
	}
}

func openService(ctx context.Context) (*service.Service, func(), error) {
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := service.NewService(ctx, st, ingest.Options{
		Workers: viper.GetInt(constants.ViperIngestWorkersKey),
		Retries: viper.GetUint64(constants.ViperIngestRetriesKey),
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return svc, closeStore, nil
}
