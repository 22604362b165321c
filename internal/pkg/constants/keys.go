package constants

// Reserved keys of a raw survey record. They describe the record and are never
// written as variables.
const (
	RecordKeyDataSource = "_data_source"
	RecordKeyFacilityID = "_facility_id"
	RecordKeyLGA        = "_lga"
	RecordKeyDate       = "_date"
)

const (
	CookieKeySecretToken = "secret_token"
	HeaderKeyRequestID   = "X-Request-ID"
	CtxKeyRequestID      = "request_id"
)

const SectorVariableSlug = "sector"
