// Package stream is the websocket adapter: it decodes viewer intents,
// drives the queue engine and pushes room events back out through the
// dispatcher.
package stream

import (
	"encoding/json"
	"fmt"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

// Inbound messages are a closed set of variants discriminated by the
// "type" field. Decoding happens once, here; handlers switch over the
// concrete types so an unhandled intent is a visible gap, not a silent
// string mismatch.

type Intent interface{ intent() }

type PingIntent struct{}

type AddVideoIntent struct {
	URL         string `json:"url"`
	ExtractedID string `json:"extractedId"`
	Title       string `json:"title"`
	SmallImg    string `json:"smallImg"`
	BigImg      string `json:"bigImg"`
	UserID      string `json:"userId"`
}

// VoteIntent covers both UPVOTE and DOWNVOTE: either way the vote is
// toggled; Kind only selects the broadcast event name.
type VoteIntent struct {
	StreamID string `json:"streamId"`
	UserID   string `json:"userId"`
	Kind     string `json:"-"`
}

type PlayNextIntent struct{}

type GetCurrentIntent struct{}

func (PingIntent) intent()       {}
func (AddVideoIntent) intent()   {}
func (VoteIntent) intent()       {}
func (PlayNextIntent) intent()   {}
func (GetCurrentIntent) intent() {}

// DecodeIntent parses a raw client frame into one of the intent
// variants. Unknown types map to domain.ErrProtocol, missing required
// fields to domain.ErrValidation.
func DecodeIntent(data []byte) (Intent, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: bad json", domain.ErrProtocol)
	}

	switch env.Type {
	case "PING":
		return PingIntent{}, nil

	case "ADD_VIDEO", "ADD_ITEM":
		var p AddVideoIntent
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: bad %s payload", domain.ErrProtocol, env.Type)
		}
		if p.URL == "" || p.ExtractedID == "" {
			return nil, fmt.Errorf("%w: url and extractedId are required", domain.ErrValidation)
		}
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
		}
		if len(p.URL) > domain.MaxURLLen {
			return nil, fmt.Errorf("%w: url too long", domain.ErrValidation)
		}
		if len(p.Title) > domain.MaxTitleLen {
			return nil, fmt.Errorf("%w: title too long", domain.ErrValidation)
		}
		return p, nil

	case "UPVOTE", "DOWNVOTE":
		var p VoteIntent
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: bad %s payload", domain.ErrProtocol, env.Type)
		}
		if p.StreamID == "" || p.UserID == "" {
			return nil, fmt.Errorf("%w: streamId and userId are required", domain.ErrValidation)
		}
		p.Kind = env.Type
		return p, nil

	case "PLAY_NEXT":
		return PlayNextIntent{}, nil

	case "GET_CURRENT_VIDEO":
		return GetCurrentIntent{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrProtocol, env.Type)
	}
}

// Outbound event shapes, matching what the player UI consumes.

type queueEvent struct {
	Type  string          `json:"type"`
	Queue []domain.Stream `json:"queue"`
}

type videoEvent struct {
	Type  string         `json:"type"`
	Video *domain.Stream `json:"video"`
}

type addedEvent struct {
	Type   string        `json:"type"`
	Video  domain.Stream `json:"video"`
	UserID string        `json:"userId"`
}

type votedEvent struct {
	Type       string `json:"type"`
	VideoID    string `json:"videoId"`
	NewUpvotes int    `json:"newUpvotes"`
	UserVoted  bool   `json:"userVoted"`
	UserID     string `json:"userId"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type pongEvent struct {
	Type string `json:"type"`
}

func InitialQueue(queue []domain.Stream) any { return queueEvent{"INITIAL_QUEUE", queue} }
func QueueUpdated(queue []domain.Stream) any { return queueEvent{"QUEUE_UPDATED", queue} }
func CurrentVideo(v *domain.Stream) any      { return videoEvent{"CURRENT_VIDEO", v} }
func VideoPlaying(v *domain.Stream) any      { return videoEvent{"VIDEO_PLAYING", v} }
func Pong() any                              { return pongEvent{"PONG"} }

func VideoAdded(v domain.Stream, userID string) any {
	return addedEvent{"VIDEO_ADDED", v, userID}
}

// VideoVoted builds VIDEO_UPVOTED or VIDEO_DOWNVOTED depending on the
// intent that caused it.
func VideoVoted(kind string, videoID string, newUpvotes int, userVoted bool, userID string) any {
	typ := "VIDEO_UPVOTED"
	if kind == "DOWNVOTE" {
		typ = "VIDEO_DOWNVOTED"
	}
	return votedEvent{typ, videoID, newUpvotes, userVoted, userID}
}

func ErrorEvent(message string) any { return errorEvent{"ERROR", message} }
