package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/adapters/stream"
	"github.com/PraverBajaj/PulsePlay/internal/app"
	"github.com/PraverBajaj/PulsePlay/internal/domain"
	"github.com/PraverBajaj/PulsePlay/internal/queue"
	"github.com/PraverBajaj/PulsePlay/internal/youtube"
)

// StreamAPI is the non-realtime mutation surface. It mutates through
// the same engine and announces through the same dispatcher as the
// websocket handler, so REST and websocket viewers never diverge.
type StreamAPI struct {
	engine     *queue.Engine
	dispatcher *app.Dispatcher
	yt         *youtube.Client
}

func NewStreamAPI(engine *queue.Engine, dispatcher *app.Dispatcher, yt *youtube.Client) *StreamAPI {
	return &StreamAPI{engine: engine, dispatcher: dispatcher, yt: yt}
}

func viewerID(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString("client_token"))
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CreateStream handles POST /api/streams {creatorId, url}.
func (a *StreamAPI) CreateStream(c *gin.Context) {
	var req struct {
		CreatorID string `json:"creatorId" binding:"required"`
		URL       string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "creatorId and url are required"})
		return
	}

	videoID, err := youtube.ExtractID(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	submitter := viewerID(c)
	s, err := domain.NewStream(domain.CreatorID(req.CreatorID), submitter, req.URL, videoID)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": err.Error()})
		return
	}

	if meta, err := a.yt.VideoMeta(c.Request.Context(), videoID); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("video", videoID).Msg("metadata lookup failed")
	} else if meta != nil {
		s.Title = meta.Title
		s.SmallImg = meta.SmallImg
		s.BigImg = meta.BigImg
	}

	if err := a.engine.AddStream(c.Request.Context(), s); err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": "error while adding stream"})
		return
	}

	a.dispatcher.Broadcast(s.CreatorID, stream.VideoAdded(*s, string(submitter)))
	c.JSON(http.StatusOK, gin.H{"message": "Stream Created", "streamId": s.ID})
}

// ListStreams handles GET /api/streams?creatorId=... with the pending
// queue in authoritative order.
func (a *StreamAPI) ListStreams(c *gin.Context) {
	creator := domain.CreatorID(c.Query("creatorId"))
	if creator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "creatorId is required"})
		return
	}
	pending, err := a.engine.Pending(c.Request.Context(), creator)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": "error while fetching streams"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"streams": pending})
}

func (a *StreamAPI) Upvote(c *gin.Context)   { a.vote(c, "UPVOTE") }
func (a *StreamAPI) Downvote(c *gin.Context) { a.vote(c, "DOWNVOTE") }

// vote applies UPVOTE as a toggle, DOWNVOTE as a retraction only; a
// downvote with no standing vote mutates nothing and just reports the
// current state. Broadcasts run in the engine's notify callback, still
// serialized with the mutation, so they reach sessions in order.
func (a *StreamAPI) vote(c *gin.Context, kind string) {
	var req struct {
		StreamID string `json:"streamId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "streamId is required"})
		return
	}

	ctx := c.Request.Context()
	id := domain.StreamID(req.StreamID)

	s, err := a.engine.Stream(ctx, id)
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": "stream not found"})
		return
	}

	mutate := a.engine.ToggleVote
	if kind == "DOWNVOTE" {
		mutate = a.engine.RetractVote
	}

	voter := viewerID(c)
	res, err := mutate(ctx, s.CreatorID, voter, id, func(res queue.VoteResult) {
		a.dispatcher.Broadcast(s.CreatorID, stream.VideoVoted(kind, req.StreamID, res.Count, res.Voted, string(voter)))
		a.dispatcher.Broadcast(s.CreatorID, stream.QueueUpdated(res.Queue))
	})
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": "error while voting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "upvotes": res.Count, "userVoted": res.Voted})
}

// PlayNext handles GET /api/streams/next?creatorId=... and promotes the
// most upvoted pending stream.
func (a *StreamAPI) PlayNext(c *gin.Context) {
	creator := domain.CreatorID(c.Query("creatorId"))
	if creator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "creatorId is required"})
		return
	}

	ctx := c.Request.Context()
	next, err := a.engine.PromoteNext(ctx, creator, func(next *domain.Stream, pending []domain.Stream) {
		a.dispatcher.Broadcast(creator, stream.VideoPlaying(next))
		a.dispatcher.Broadcast(creator, stream.QueueUpdated(pending))
	})
	if err != nil {
		c.JSON(statusFromErr(err), gin.H{"message": "error while promoting"})
		return
	}

	if next == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "no unplayed stream found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stream": next})
}
