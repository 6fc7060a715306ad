package types

// RequestIDHeader carries the correlation id echoed into error bodies.
const RequestIDHeader = "X-Request-Id"

// SuccessEnvelope wraps every successful ops response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public view of a typed catalog error. Retryable mirrors the
// error code's metadata so callers can back off on dependency faults.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}
