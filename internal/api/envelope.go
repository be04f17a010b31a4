package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope shape changes in a way
// clients must handle.
const envelopeVersion = 1

// Envelope is the wire format every API response is wrapped in.
// Success responses carry data, error responses carry either a plain
// error string or a code/message/details triple.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the standard envelope.
// Registered on the huma config so handlers return bare DTOs.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		env := &Envelope{
			V:     envelopeVersion,
			Error: apiErr.Message,
		}
		if apiErr.Code != "" {
			env.Code = apiErr.Code
			env.Message = apiErr.Message
			env.Details = apiErr.Details
		}
		return env, nil
	}

	return &Envelope{
		V:       envelopeVersion,
		Success: len(status) > 0 && status[0] < '4',
		Data:    v,
	}, nil
}
