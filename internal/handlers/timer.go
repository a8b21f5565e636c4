package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPingPeriod = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// TimerState is the stopwatch as reported to clients.
type TimerState struct {
	Running bool    `json:"running"`
	Seconds float64 `json:"seconds"`
}

func (h *Handler) timerState() TimerState {
	return TimerState{Running: h.stopwatch.Running(), Seconds: h.stopwatch.Seconds()}
}

// HandleTimerGet returns the stopwatch state.
func (h *Handler) HandleTimerGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.timerState(), "timer")
}

// HandleTimerStart starts the stopwatch.
func (h *Handler) HandleTimerStart(w http.ResponseWriter, r *http.Request) {
	h.stopwatch.Start()
	writeJSON(w, h.timerState(), "timer")
}

// HandleTimerStop pauses the stopwatch.
func (h *Handler) HandleTimerStop(w http.ResponseWriter, r *http.Request) {
	h.stopwatch.Stop()
	writeJSON(w, h.timerState(), "timer")
}

// HandleTimerReset zeroes the stopwatch.
func (h *Handler) HandleTimerReset(w http.ResponseWriter, r *http.Request) {
	h.stopwatch.Reset()
	writeJSON(w, h.timerState(), "timer")
}

// HandleTimerWS streams the stopwatch state over a websocket on every tick.
func (h *Handler) HandleTimerWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Timer websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	updates := h.stopwatch.Subscribe(ctx)

	// read loop ends on client close or error
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case elapsed, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "timer closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			state := TimerState{Running: h.stopwatch.Running(), Seconds: elapsed.Seconds()}
			if err := conn.WriteJSON(state); err != nil {
				log.Debug().Err(err).Msg("Timer websocket write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
