package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/service"
	ws "github.com/stemsi/exstem-prep/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams timer and finalization events of the session.
type WSHandler struct {
	hub            *service.StreamHub
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *service.StreamHub, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:            hub,
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream
// Sends the current state on connect, then pushes tick, warning, time_up
// and finalized events. Clients may send "ping" and "state" actions.
func (h *WSHandler) SessionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	notices, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	h.log.Info().Str("remote", c.ClientIP()).Msg("Stream client connected")

	if err := ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: h.sessionService.State()}); err != nil {
		return
	}

	// Only this goroutine writes; the reader forwards actions.
	actions := make(chan ws.Action)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn().Err(err).Msg("Unexpected close")
				} else {
					h.log.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case actions <- msg.Action:
			case <-c.Request.Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return

		case n, ok := <-notices:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.FromNotice(n)); err != nil {
				h.log.Debug().Err(err).Msg("Stream write failed")
				return
			}

		case action := <-actions:
			var err error
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionState:
				err = ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: h.sessionService.State()})
			default:
				h.log.Warn().Str("action", string(action)).Msg("Unknown action")
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}
		}
	}
}
