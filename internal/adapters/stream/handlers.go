package stream

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
	"github.com/PraverBajaj/PulsePlay/internal/queue"
)

func (ctl *Controller) handleIntent(ctx context.Context, creator domain.CreatorID, sess *session, data []byte) {
	intent, err := DecodeIntent(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "stream").Str("creator", string(creator)).Msg("rejected intent")
		ctl.sendError(sess, err)
		return
	}

	switch p := intent.(type) {
	case PingIntent:
		_ = ctl.dispatcher.SendTo(sess, Pong())
	case AddVideoIntent:
		ctl.handleAdd(ctx, creator, sess, p)
	case VoteIntent:
		ctl.handleVote(ctx, creator, sess, p)
	case PlayNextIntent:
		ctl.handlePlayNext(ctx, creator, sess)
	case GetCurrentIntent:
		ctl.handleGetCurrent(ctx, creator, sess)
	}
}

func (ctl *Controller) handleAdd(ctx context.Context, creator domain.CreatorID, sess *session, p AddVideoIntent) {
	s, err := domain.NewStream(creator, domain.UserID(p.UserID), p.URL, p.ExtractedID)
	if err != nil {
		ctl.sendError(sess, err)
		return
	}
	s.Title = p.Title
	s.SmallImg = p.SmallImg
	s.BigImg = p.BigImg

	if err := ctl.engine.AddStream(ctx, s); err != nil {
		ctl.sendError(sess, err)
		return
	}
	ctl.dispatcher.Broadcast(creator, VideoAdded(*s, p.UserID))
}

// handleVote applies UPVOTE as a toggle and DOWNVOTE as a retraction
// only; a DOWNVOTE with no standing vote changes nothing and just
// reports current state. Both room broadcasts run inside the engine's
// notify callback, while the room is still serialized, so frames for
// competing votes cannot arrive carrying a stale order.
func (ctl *Controller) handleVote(ctx context.Context, creator domain.CreatorID, sess *session, p VoteIntent) {
	mutate := ctl.engine.ToggleVote
	if p.Kind == "DOWNVOTE" {
		mutate = ctl.engine.RetractVote
	}

	_, err := mutate(ctx, creator, domain.UserID(p.UserID), domain.StreamID(p.StreamID), func(res queue.VoteResult) {
		ctl.dispatcher.Broadcast(creator, VideoVoted(p.Kind, p.StreamID, res.Count, res.Voted, p.UserID))
		ctl.dispatcher.Broadcast(creator, QueueUpdated(res.Queue))
	})
	if err != nil {
		ctl.sendError(sess, err)
	}
}

func (ctl *Controller) handlePlayNext(ctx context.Context, creator domain.CreatorID, sess *session) {
	_, err := ctl.engine.PromoteNext(ctx, creator, func(next *domain.Stream, pending []domain.Stream) {
		ctl.dispatcher.Broadcast(creator, VideoPlaying(next))
		ctl.dispatcher.Broadcast(creator, QueueUpdated(pending))
	})
	if err != nil {
		ctl.sendError(sess, err)
	}
}

func (ctl *Controller) handleGetCurrent(ctx context.Context, creator domain.CreatorID, sess *session) {
	current, err := ctl.engine.Current(ctx, creator)
	if err != nil {
		ctl.sendError(sess, err)
		return
	}
	_ = ctl.dispatcher.SendTo(sess, CurrentVideo(current))
}

// sendError reports a failed intent to the originating session only.
// Room state is untouched and other sessions never hear about it.
func (ctl *Controller) sendError(sess *session, err error) {
	msg := "something went wrong"
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrProtocol):
		msg = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		msg = "video not found"
	case errors.Is(err, domain.ErrUnavailable):
		msg = "store unavailable, try again"
	}
	_ = ctl.dispatcher.SendTo(sess, ErrorEvent(msg))
}
