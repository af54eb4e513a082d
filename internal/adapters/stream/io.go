package stream

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, s *session) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			// Server-initiated shutdown is a normal close; well-behaved
			// clients will not auto-reconnect on 1000.
			_ = s.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutdown")
			_ = s.conn.WriteMessage(websocket.CloseMessage, frame)
			return
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if !ok {
				if frame := s.closeFrame(); frame != nil {
					_ = s.conn.WriteMessage(websocket.CloseMessage, frame)
				}
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "stream").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, creator domain.CreatorID, s *session) {
	defer func() {
		ctl.registry.Evict(creator, s)
		s.Close()
		cancel()
		log.Info().Str("module", "stream").Str("creator", string(creator)).Msg("session closed")
	}()

	s.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "stream").Str("creator", string(creator)).Msg("readPump read error")
			}
			return
		}

		// Any inbound frame counts as liveness, application PING
		// included. A silent client passes the deadline and is evicted
		// by the read error above.
		_ = s.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))

		ctl.handleIntent(ctx, creator, s, data)
	}
}
