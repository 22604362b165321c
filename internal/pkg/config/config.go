package config

import (
	"fmt"
	"strings"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/spf13/viper"
)

const envPrefix = "FACILITIES"

func setDefaults() {
	viper.SetDefault(constants.ViperHTTPAddrKey, ":8080")
	viper.SetDefault(constants.ViperHTTPAllowOriginsKey, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperStorageDriverKey, constants.StorageDriverPostgres)
	viper.SetDefault(constants.ViperPostgresDSNKey, "postgres://localhost:5432/facilities?sslmode=disable")
	viper.SetDefault(constants.ViperPostgresMaxConnsKey, 10)
	viper.SetDefault(constants.ViperPostgresConnectRetriesKey, 5)
	viper.SetDefault(constants.ViperLogLevelKey, "info")
	viper.SetDefault(constants.ViperLogDevelopmentKey, false)
	viper.SetDefault(constants.ViperIngestWorkersKey, 4)
	viper.SetDefault(constants.ViperIngestRetriesKey, 3)
}

// Load reads defaults, the optional config file at path and FACILITIES_* env vars
// into the global viper instance.
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("viper.ReadInConfig, path-%s: %w", path, err)
	}

	return nil
}
