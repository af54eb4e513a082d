// Package domain contains entities without logic, just meta-data.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxTitleLen = 256
	MaxURLLen   = 512
)

type (
	StreamID  string
	CreatorID string
	UserID    string
)

// Stream is one queued video in a creator's room. At most one stream
// per creator may be Active at any time.
type Stream struct {
	ID          StreamID  `json:"id" db:"id"`
	CreatorID   CreatorID `json:"creatorId" db:"creator_id"`
	SubmittedBy UserID    `json:"userId" db:"submitted_by"`
	URL         string    `json:"url" db:"url"`
	ExtractedID string    `json:"extractedId" db:"extracted_id"`
	Title       string    `json:"title" db:"title"`
	SmallImg    string    `json:"smallImg" db:"small_img"`
	BigImg      string    `json:"bigImg" db:"big_img"`
	Upvotes     int       `json:"upvotes" db:"upvotes"`
	Played      bool      `json:"played" db:"played"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NewStream avoids ad-hoc struct literals in adapters and keeps
// construction obvious. New streams always start pending.
func NewStream(creator CreatorID, submitter UserID, url, extractedID string) (*Stream, error) {
	if creator == "" {
		return nil, ErrValidation
	}
	if url == "" || len(url) > MaxURLLen {
		return nil, ErrValidation
	}
	return &Stream{
		ID:          StreamID(uuid.NewString()),
		CreatorID:   creator,
		SubmittedBy: submitter,
		URL:         url,
		ExtractedID: extractedID,
		Played:      false,
		Active:      false,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
