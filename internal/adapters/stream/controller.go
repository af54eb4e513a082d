package stream

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/app"
	"github.com/PraverBajaj/PulsePlay/internal/config"
	"github.com/PraverBajaj/PulsePlay/internal/domain"
	"github.com/PraverBajaj/PulsePlay/internal/queue"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// TODO: restrict origins once the frontend domain is fixed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller runs the per-connection protocol: handshake, snapshot
// sync, then the live intent loop. One connection, one read pump, one
// write pump.
type Controller struct {
	cfg        *config.Config
	engine     *queue.Engine
	registry   *app.Registry
	dispatcher *app.Dispatcher
}

func NewController(cfg *config.Config, engine *queue.Engine, registry *app.Registry, dispatcher *app.Dispatcher) *Controller {
	return &Controller{cfg: cfg, engine: engine, registry: registry, dispatcher: dispatcher}
}

// HandleStream serves GET /ws/:creatorId. The trailing path segment is
// the room; without it the connection is rejected with a policy
// violation close so the client knows not to retry blindly.
func (ctl *Controller) HandleStream(ctx context.Context, c *gin.Context) {
	creator := domain.CreatorID(strings.TrimSpace(c.Param("creatorId")))

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "stream").Msg("ws upgrade")
		return
	}

	sess := newSession(ws, ctl.cfg.SendBuffer)
	connCtx, cancel := context.WithCancel(ctx)
	go ctl.writePump(connCtx, sess)

	if creator == "" {
		log.Warn().Str("module", "stream").Msg("connection without creator id")
		sess.closeWith(websocket.ClosePolicyViolation, "missing creator id")
		cancel()
		return
	}

	ctl.registry.Admit(creator, sess)

	if !ctl.syncSession(connCtx, creator, sess) {
		ctl.registry.Evict(creator, sess)
		sess.closeWith(websocket.CloseInternalServerErr, "snapshot failed")
		cancel()
		return
	}

	go ctl.readPump(connCtx, cancel, creator, sess)
}

// syncSession pushes the INITIAL_QUEUE / CURRENT_VIDEO snapshot to the
// new session only. The snapshot is the single pull moment of the
// protocol; everything after it arrives as push deltas. One retry on a
// failed fetch, then the connection is failed.
func (ctl *Controller) syncSession(ctx context.Context, creator domain.CreatorID, sess *session) bool {
	pending, current, err := ctl.snapshot(ctx, creator)
	if err != nil {
		log.Warn().Err(err).Str("module", "stream").Str("creator", string(creator)).Msg("snapshot failed, retrying")
		pending, current, err = ctl.snapshot(ctx, creator)
	}
	if err != nil {
		log.Error().Err(err).Str("module", "stream").Str("creator", string(creator)).Msg("snapshot failed")
		return false
	}

	_ = ctl.dispatcher.SendTo(sess, InitialQueue(pending))
	_ = ctl.dispatcher.SendTo(sess, CurrentVideo(current))
	return true
}

func (ctl *Controller) snapshot(ctx context.Context, creator domain.CreatorID) ([]domain.Stream, *domain.Stream, error) {
	pending, err := ctl.engine.Pending(ctx, creator)
	if err != nil {
		return nil, nil, err
	}
	current, err := ctl.engine.Current(ctx, creator)
	if err != nil {
		return nil, nil, err
	}
	return pending, current, nil
}
