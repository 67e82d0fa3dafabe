package models

import "time"

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Redirect  string            `json:"redirect,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WebSocket messages
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	// QuizEventsChannel is the pub/sub channel carrying quiz events to admin sockets.
	QuizEventsChannel = "quiz_events"

	EventQuizPublishChanged = "quiz_publish_changed"
)

type QuizPublishChanged struct {
	QuizID    string    `json:"quiz_id"`
	Published bool      `json:"published"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}
