// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/stagehand/internal/storage"
	"github.com/jeranaias/stagehand/internal/synclient"
)

// newTestRelay spins up a relay over an in-memory session store.
func newTestRelay(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ts := httptest.NewServer(NewServer(store).Router())
	t.Cleanup(ts.Close)
	return ts
}

func createSession(t *testing.T, ts *httptest.Server) synclient.Record {
	t.Helper()
	body := bytes.NewBufferString(`{"presentation_id":"deck-1"}`)
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rec synclient.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	return rec
}

func dialSession(t *testing.T, ts *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + id
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readState(t *testing.T, ws *websocket.Conn) synclient.Record {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg synclient.Message
	require.NoError(t, ws.ReadJSON(&msg))
	require.Equal(t, synclient.MessageState, msg.Type)
	require.NotNil(t, msg.Record)
	return *msg.Record
}

// =============================================================================
// SESSION API TESTS
// =============================================================================

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestRelay(t)
	rec := createSession(t, ts)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "deck-1", rec.PresentationID)

	resp, err := http.Get(ts.URL + "/api/sessions/" + rec.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got synclient.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, rec.ID, got.ID)
}

func TestCreateSessionsAreFresh(t *testing.T) {
	ts := newTestRelay(t)
	a := createSession(t, ts)
	b := createSession(t, ts)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGetUnknownSessionIs404(t *testing.T) {
	ts := newTestRelay(t)
	resp, err := http.Get(ts.URL + "/api/sessions/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestRelay(t)
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json",
		bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJoinPageServed(t *testing.T) {
	ts := newTestRelay(t)
	rec := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/join/" + rec.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

// =============================================================================
// WEBSOCKET FAN-OUT TESTS
// =============================================================================

func TestWebSocketSeedsCurrentState(t *testing.T) {
	ts := newTestRelay(t)
	rec := createSession(t, ts)

	ws := dialSession(t, ts, rec.ID)
	state := readState(t, ws)
	assert.Equal(t, 0, state.CurrentSlideIndex)
}

func TestUpdateFansOutToAllSurfaces(t *testing.T) {
	ts := newTestRelay(t)
	rec := createSession(t, ts)

	presenter := dialSession(t, ts, rec.ID)
	remote := dialSession(t, ts, rec.ID)
	readState(t, presenter)
	readState(t, remote)

	three := 3
	require.NoError(t, presenter.WriteJSON(synclient.Message{
		Type:   synclient.MessageUpdate,
		Update: &synclient.Update{SlideIndex: &three},
	}))

	// Both surfaces, including the writer, receive the new state.
	assert.Equal(t, 3, readState(t, remote).CurrentSlideIndex)
	assert.Equal(t, 3, readState(t, presenter).CurrentSlideIndex)
}

func TestLastWriteWinsAcrossSurfaces(t *testing.T) {
	ts := newTestRelay(t)
	rec := createSession(t, ts)

	a := dialSession(t, ts, rec.ID)
	b := dialSession(t, ts, rec.ID)
	readState(t, a)
	readState(t, b)

	two, five := 2, 5
	require.NoError(t, a.WriteJSON(synclient.Message{
		Type: synclient.MessageUpdate, Update: &synclient.Update{SlideIndex: &two}}))
	assert.Equal(t, 2, readState(t, a).CurrentSlideIndex)
	assert.Equal(t, 2, readState(t, b).CurrentSlideIndex)

	require.NoError(t, b.WriteJSON(synclient.Message{
		Type: synclient.MessageUpdate, Update: &synclient.Update{SlideIndex: &five}}))
	assert.Equal(t, 5, readState(t, a).CurrentSlideIndex)
	assert.Equal(t, 5, readState(t, b).CurrentSlideIndex)

	// The store agrees with the surfaces.
	resp, err := http.Get(ts.URL + "/api/sessions/" + rec.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	var got synclient.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 5, got.CurrentSlideIndex)
}

func TestUnknownSessionWebSocketRejected(t *testing.T) {
	ts := newTestRelay(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// RELAY STORE INTEGRATION TESTS
// =============================================================================

func TestRelayStoreRoundTrip(t *testing.T) {
	ts := newTestRelay(t)
	ctx := context.Background()

	rs := synclient.NewRelayStore(ts.URL)
	rec, err := rs.CreateSession(ctx, "deck-1")
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []int
	unsub, err := rs.Subscribe(ctx, rec.ID, func(r synclient.Record) {
		mu.Lock()
		seen = append(seen, r.CurrentSlideIndex)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	four := 4
	require.NoError(t, rs.Publish(ctx, rec.ID, synclient.Update{SlideIndex: &four}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == 4
	}, 2*time.Second, 10*time.Millisecond, "subscriber should observe the published index")

	got, err := rs.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentSlideIndex)
}
