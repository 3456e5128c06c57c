package responses

// SuccessEnvelope wraps every JSON payload of the cart API.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorBody is the public part of a failure. RequestID lets a client report
// be matched to the server logs.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
