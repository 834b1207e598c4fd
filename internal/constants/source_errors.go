package constants

// Source Error Codes
// These constants define specific error scenarios for the upstream
// telemetry and registry sources.

// Transport-related errors
const (
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeNetworkError = "NETWORK_ERROR"
	ErrCodeBadStatus    = "BAD_STATUS"
	ErrCodeTimeout      = "TIMEOUT"
)

// Payload-related errors
const (
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeTruncatedPayload = "TRUNCATED_PAYLOAD"
)

// Reference-data errors
const (
	ErrCodeUnknownAircraft = "UNKNOWN_AIRCRAFT"
	ErrCodeUnknownModel    = "UNKNOWN_MODEL"
)

// Storage and configuration errors
const (
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeReadOnlyBackend    = "READ_ONLY_BACKEND"
	ErrCodeNotConfigured      = "NOT_CONFIGURED"
)

// Error Messages
// Human-readable messages corresponding to error codes

var SourceErrorMessages = map[string]string{
	// Transport
	ErrCodeRateLimited:  "Rate limit exceeded at the telemetry source. Backing off",
	ErrCodeNetworkError: "Unable to reach the telemetry source",
	ErrCodeBadStatus:    "The telemetry source returned an unexpected HTTP status",
	ErrCodeTimeout:      "The request to the telemetry source timed out",

	// Payload
	ErrCodeMalformedPayload: "The trace payload could not be decoded",
	ErrCodeTruncatedPayload: "The trace payload ended unexpectedly",

	// Reference data
	ErrCodeUnknownAircraft: "No registry entry exists for this ICAO number",
	ErrCodeUnknownModel:    "No fuel consumption is known for this aircraft model",

	// Storage / configuration
	ErrCodeBackendUnavailable: "The storage backend could not be reached",
	ErrCodeReadOnlyBackend:    "A write was attempted on a read-only backend",
	ErrCodeNotConfigured:      "A required configuration value is missing",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := SourceErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
