package constants

// Session / context keys
const (
	SessionCookieName = "psa_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRole    = "user_role"
)

// Auth rules
const (
	MinPasswordLength = 8
)

// Pagination
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Business limits
const (
	MaxDailyHours        = 24.0
	MaxWeeklyForecast    = 40.0
	NominalWeeklyHours   = 40
	NearCapacityThreshold = 35.0
)
