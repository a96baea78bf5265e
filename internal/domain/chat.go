package domain

import "time"

// Chat entry kinds, matching the backend's single-letter discriminator.
const (
	ChatQuestion = "Q"
	ChatAnswer   = "A"
)

// ChatEntry is one line of the assistant conversation as stored by the
// bot history endpoints.
type ChatEntry struct {
	Type      string    `json:"type"`
	Statement string    `json:"statement"`
	Timestamp time.Time `json:"timestamp"`
}
