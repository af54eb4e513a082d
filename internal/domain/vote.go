package domain

import "time"

// Vote marks that a user has upvoted a stream. Existence is binary:
// voting again removes the row (toggle semantics).
type Vote struct {
	UserID    UserID    `json:"userId" db:"user_id"`
	StreamID  StreamID  `json:"streamId" db:"stream_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
