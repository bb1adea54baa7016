package monitor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *EventCollector, *httptest.Server) {
	t.Helper()
	collector := NewEventCollector()
	srv := NewServer("127.0.0.1:0", collector, NewDashboard(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return srv, collector, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SendsSnapshotFirst(t *testing.T) {
	_, collector, ts := newTestServer(t)
	collector.EmitRunStarted("run-1")
	collector.EmitCaseStarted("Homepage Test")

	conn := dial(t, ts)
	msg := readMessage(t, conn)

	assert.Equal(t, MessageSnapshot, msg.Kind)
	require.NotNil(t, msg.Dashboard)
	assert.Equal(t, "run-1", msg.Dashboard.RunID)
	assert.Equal(t, "running", msg.Dashboard.Cases["Homepage Test"].Status)
}

func TestHub_BroadcastsEvents(t *testing.T) {
	srv, collector, ts := newTestServer(t)

	conn := dial(t, ts)
	readMessage(t, conn)
	assert.Equal(t, 1, srv.Hub().Clients())

	collector.EmitCaseStarted("QA Jobs Test")
	collector.EmitStepFailed("QA Jobs Test", "cookies", "not found")

	first := readMessage(t, conn)
	assert.Equal(t, MessageEvent, first.Kind)
	require.NotNil(t, first.Event)
	assert.Equal(t, EventCaseStarted, first.Event.Type)

	second := readMessage(t, conn)
	require.NotNil(t, second.Event)
	assert.Equal(t, EventStepFailed, second.Event.Type)
	assert.Equal(t, "cookies", second.Event.Step)
}

func TestHub_MultipleClients(t *testing.T) {
	_, collector, ts := newTestServer(t)

	a := dial(t, ts)
	b := dial(t, ts)
	readMessage(t, a)
	readMessage(t, b)

	collector.EmitCaseStarted("Homepage Test")

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		require.NotNil(t, msg.Event)
		assert.Equal(t, "Homepage Test", msg.Event.Case)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	srv, _, ts := newTestServer(t)

	conn := dial(t, ts)
	readMessage(t, conn)
	require.Equal(t, 1, srv.Hub().Clients())

	conn.Close()
	assert.Eventually(t, func() bool {
		return srv.Hub().Clients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	srv, _, ts := newTestServer(t)

	conn := dial(t, ts)
	readMessage(t, conn)

	srv.Hub().Close()
	assert.Equal(t, 0, srv.Hub().Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UpgradeRequired(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Dashboard(t *testing.T) {
	_, collector, ts := newTestServer(t)
	collector.EmitRunStarted("run-7")
	collector.EmitCaseStarted("a")

	resp, err := http.Get(ts.URL + "/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var view DashboardView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "run-7", view.RunID)
	assert.Equal(t, []string{"a"}, view.Order)
}

func TestServer_Health(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewEventCollector(), NewDashboard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(srv.Addr(), ":0")
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, srv.Stop(stopCtx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestServer_StartListenError(t *testing.T) {
	srv := NewServer("256.0.0.1:bad", NewEventCollector(), NewDashboard(), nil)
	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor listen")
}
