package signal

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

// readPump decodes frames into the inbox. Its exit, normal or not, ends the connection.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, conn *core.Connection, c *WsSignalConn, inbox chan<- core.Command) {
	uid := conn.UserID()
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(uid)).Msg("readPump closing")
		close(inbox)
		c.Close()
		cancel()
	}()

	pongWait := ctl.opts.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := core.DecodeCommand(data)
		if err != nil {
			conn.SendError(domain.Validation("Invalid message format"))
			continue
		}
		if ctl.limiter != nil && !ctl.limiter.Allow(uid) {
			conn.SendError(domain.NewError(domain.KindValidation, domain.CodeRateLimited, "Too many events"))
			continue
		}
		select {
		case inbox <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// dispatchLoop runs the connection's commands one at a time, then releases the connection.
func (ctl *SignalWSController) dispatchLoop(ctx context.Context, conn *core.Connection, inbox <-chan core.Command) {
	defer func() {
		// An evicted connection must not reset the window of its replacement.
		if ctl.Orch.OnDisconnect(context.WithoutCancel(ctx), conn) && ctl.limiter != nil {
			ctl.limiter.Forget(conn.UserID())
		}
	}()
	for cmd := range inbox {
		ctl.Orch.Dispatch(ctx, conn, cmd)
	}
}
