package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTimerWS_StreamsTicks(t *testing.T) {
	tc := NewTestContext()

	srv := httptest.NewServer(http.HandlerFunc(tc.Handler.HandleTimerWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// current state arrives on connect
	var state TimerState
	require.NoError(t, conn.ReadJSON(&state))
	assert.False(t, state.Running)
	assert.Zero(t, state.Seconds)

	tc.Stopwatch.Start()
	for state.Seconds == 0 {
		require.NoError(t, conn.ReadJSON(&state))
	}
	assert.Greater(t, state.Seconds, 0.0)

	tc.Stopwatch.Close()
	for {
		if err := conn.ReadJSON(&state); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
			break
		}
	}
}
