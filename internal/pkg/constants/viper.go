package constants

const (
	ViperHTTPAddrKey         = "http.addr"
	ViperHTTPAllowOriginsKey = "http.allow_origins"

	ViperStorageDriverKey = "storage.driver"

	ViperPostgresDSNKey            = "postgres.dsn"
	ViperPostgresMaxConnsKey       = "postgres.max_conns"
	ViperPostgresConnectRetriesKey = "postgres.connect_retries"

	ViperSecretKey = "auth.secret"

	ViperLogLevelKey       = "log.level"
	ViperLogDevelopmentKey = "log.development"

	ViperIngestWorkersKey = "ingest.workers"
	ViperIngestRetriesKey = "ingest.retries"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)
