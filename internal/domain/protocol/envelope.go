// Package protocol defines the message envelope and typed payloads
// exchanged between the CAD plugin process and the desktop companion.
// Envelopes are JSON-encoded and carried over a length-prefixed stream
// (pipe transport) or the HTTP fallback surface; both use the same body.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Request message types consumed by the router.
const (
	TypeLayoutGenerationRequest = "layout_generation_request"
	TypeValidationRequest       = "validation_request"
	TypeProjectAnalysisRequest  = "project_analysis_request"
	TypeHealthCheck             = "health_check"
)

// Response message types. A response type is always the request type
// with the "_response" suffix.
const (
	TypeLayoutGenerationResponse = "layout_generation_response"
	TypeValidationResponse       = "validation_response"
	TypeProjectAnalysisResponse  = "project_analysis_response"
	TypeHealthCheckResponse      = "health_check_response"
	TypeErrorResponse            = "error_response"
)

// Push-only message types, sent server-to-client without a matching request.
const (
	TypeProgressUpdate         = "progress_update"
	TypeCompletionNotification = "completion_notification"
	TypeProjectAnalysis        = "project_analysis"
)

// Envelope wraps every message on the wire. CorrelationId is minted by
// the caller and is the only mechanism linking a request to its
// response; the pipe transport does not guarantee ordering across
// reconnects.
type Envelope struct {
	Id            string          `json:"id"`
	MessageType   string          `json:"messageType"`
	CorrelationId string          `json:"correlationId"`
	Data          json.RawMessage `json:"data,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewEnvelope builds an envelope with a fresh id and the given
// correlation id, marshaling payload into Data.
func NewEnvelope(messageType, correlationId string, payload interface{}) (*Envelope, error) {
	env := &Envelope{
		Id:            uuid.NewString(),
		MessageType:   messageType,
		CorrelationId: correlationId,
		Timestamp:     time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", messageType, err)
		}
		env.Data = data
	}
	return env, nil
}

// NewRequest builds a request envelope with a fresh correlation id.
func NewRequest(messageType string, payload interface{}) (*Envelope, error) {
	return NewEnvelope(messageType, uuid.NewString(), payload)
}

// Reply builds a response envelope carrying the request's correlation id.
func (e *Envelope) Reply(messageType string, payload interface{}) (*Envelope, error) {
	return NewEnvelope(messageType, e.CorrelationId, payload)
}

// ReplyError builds a structured error response for this envelope.
// Handler failures are reported this way so the connection stays open.
func (e *Envelope) ReplyError(message string) *Envelope {
	env, _ := NewEnvelope(TypeErrorResponse, e.CorrelationId, ErrorResponse{
		Success: false,
		Error:   message,
	})
	return env
}

// DecodePayload unmarshals the envelope data into out.
func (e *Envelope) DecodePayload(out interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s envelope has no payload", e.MessageType)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.MessageType, err)
	}
	return nil
}

// ResponseTypeFor returns the expected response message type for a
// request type.
func ResponseTypeFor(requestType string) string {
	return requestType + "_response"
}

// IsPushType reports whether the message type is push-only.
func IsPushType(messageType string) bool {
	switch messageType {
	case TypeProgressUpdate, TypeCompletionNotification, TypeProjectAnalysis:
		return true
	default:
		return false
	}
}

// ErrorResponse is the payload of an error_response envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
