package responses

// SuccessEnvelope wraps every /api/v1 success body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorBody is the public part of a failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error body, including those of the demo endpoints.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}
