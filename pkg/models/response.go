package models

import "time"

// Response is the uniform result value returned by the embassy components.
// Failures are reported through Success=false and a plain-language Message.
type Response struct {
	Agent      string         `json:"agent_name"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	NextAction string         `json:"next_action,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewResponse builds a timestamped response.
func NewResponse(agent string, success bool, message string, data map[string]any, next string) Response {
	return Response{
		Agent:      agent,
		Success:    success,
		Message:    message,
		Data:       data,
		NextAction: next,
		Timestamp:  time.Now().UTC(),
	}
}
