package entities

import "time"

// Feedback is a user rating for a delivered answer. The service stores it
// verbatim and does not interpret its content.
type Feedback struct {
	ID        string
	SessionID string
	AnswerID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
