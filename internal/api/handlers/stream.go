package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pv-simulator/internal/api/models"
	"pv-simulator/internal/simulation"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	streamWriteWait = 10 * time.Second
	streamReadWait  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream handles GET /api/v1/simulate/stream
//
// The client sends one SimulateRequest as its first text frame. The server
// answers with a "stage" frame per finished stage, a "month" frame per
// calendar month of the balance, then one "result" frame, and closes. Any
// failure is reported as an "error" frame.
func (h *SimulationHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	send := func(msgType string, payload any) bool {
		msg, err := models.NewStreamMessage(msgType, payload)
		if err != nil {
			log.Error().Err(err).Str("type", msgType).Msg("failed to encode stream message")
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("stream client went away")
			return false
		}
		return true
	}
	fail := func(err error) {
		_, detail := errorResponse(err)
		send("error", detail)
	}

	_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Warn().Err(err).Msg("stream read failed")
		}
		return
	}
	var req models.SimulateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		send("error", models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}
	cfg, err := h.buildConfig(req.Config)
	if err != nil {
		fail(err)
		return
	}

	rep, err := h.runner.Run(c.Request.Context(), simulation.Request{
		Config:  cfg,
		Observe: func(e simulation.Event) { send("stage", e) },
	})
	if err != nil {
		fail(err)
		return
	}
	h.store.Put(rep)

	for _, m := range rep.Balance.Monthly {
		if !send("month", m) {
			return
		}
	}
	send("result", models.SimulationResponse{Status: "completed", Report: rep})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(streamWriteWait))
}
