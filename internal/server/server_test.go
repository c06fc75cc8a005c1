package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/sprites"
	"github.com/zeusync/movingmnist/pkg/encoding"
)

func newTestEnv(t *testing.T) *env.Env {
	t.Helper()
	store, err := sprites.Load(context.Background(), sprites.SyntheticProvider{Count: 10}, sprites.SplitTrain, 0)
	require.NoError(t, err)
	e, err := env.New(store, env.Config{SeqLen: 3, DigitsPerSequence: 2}, env.WithLogger(log.NewNop()))
	require.NoError(t, err)
	return e
}

func newTestServer(t *testing.T, config Config) (*Server, *httptest.Server, string) {
	t.Helper()
	srv := NewServer(newTestEnv(t), dataset.Config{BatchSize: 2, Seed: dataset.DefaultSeed}, config, log.NewNop())
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return srv, hs, "ws" + strings.TrimPrefix(hs.URL, "http") + "/batches"
}

func expectedBatches(t *testing.T, e *env.Env, seed uint64, n int) []dataset.Batch {
	t.Helper()
	g, err := dataset.NewGenerator(e, dataset.Config{BatchSize: 2, Seed: seed}, dataset.WithLogger(log.NewNop()))
	require.NoError(t, err)
	out := make([]dataset.Batch, n)
	for i := range out {
		out[i], err = g.Next(context.Background())
		require.NoError(t, err)
	}
	return out
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{Addr: ""},
		{Addr: ":1", MaxBatches: -1},
		{Addr: ":1", WriteTimeout: -time.Second},
	}
	for _, c := range bad {
		assert.True(t, errors.Is(c.Validate(), errs.ErrInvalidConfiguration), "%+v", c)
	}
}

func TestBatches_StreamsSeededBatches(t *testing.T) {
	srv, _, u := newTestServer(t, Config{Addr: "unused", MaxBatches: 5})

	conn, _, err := websocket.DefaultDialer.Dial(u+"?seed=11&max=2", nil)
	require.NoError(t, err)
	defer conn.Close()

	want := expectedBatches(t, srv.env, 11, 2)
	for i := 0; i < 2; i++ {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, kind)

		got, err := encoding.Decode[dataset.Batch](data)
		require.NoError(t, err)
		assert.Equal(t, want[i], got, "batch %d", i)
	}

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}

func TestBatches_ServerLimitCapsRequest(t *testing.T) {
	_, _, u := newTestServer(t, Config{Addr: "unused", MaxBatches: 1})

	conn, _, err := websocket.DefaultDialer.Dial(u+"?max=10", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = conn.ReadMessage()
	require.NoError(t, err)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}

func TestBatches_DefaultSeed(t *testing.T) {
	srv, _, u := newTestServer(t, Config{Addr: "unused", MaxBatches: 1})

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	got, err := encoding.Decode[dataset.Batch](data)
	require.NoError(t, err)
	assert.Equal(t, expectedBatches(t, srv.env, dataset.DefaultSeed, 1)[0], got)
}

func TestBatches_BadQuery(t *testing.T) {
	_, _, u := newTestServer(t, DefaultConfig())

	for _, q := range []string{"?seed=-1", "?seed=abc", "?max=0", "?max=x"} {
		_, resp, err := websocket.DefaultDialer.Dial(u+q, nil)
		require.Error(t, err, q)
		require.NotNil(t, resp, q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestHealthz(t *testing.T) {
	_, hs, _ := newTestServer(t, DefaultConfig())

	resp, err := http.Get(hs.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer(newTestEnv(t), dataset.Config{BatchSize: 1, Seed: 1}, Config{Addr: "127.0.0.1:0"}, log.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, srv.Stop(ctx), ErrServerNotRunning)
	require.NoError(t, srv.Start(ctx))
	assert.ErrorIs(t, srv.Start(ctx), ErrServerAlreadyRunning)

	// An unbounded stream ends when the server stops.
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/batches", nil)
	require.NoError(t, err)
	defer conn.Close()
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(stopCtx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "stream should close after Stop")
	}
}

func TestClient_Batches(t *testing.T) {
	srv, _, u := newTestServer(t, Config{Addr: "unused"})

	var got []dataset.Batch
	for b, err := range (Client{}).Batches(context.Background(), u+"?seed=4&max=3") {
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, expectedBatches(t, srv.env, 4, 3), got)
}

func TestClient_StopsEarly(t *testing.T) {
	_, _, u := newTestServer(t, Config{Addr: "unused"})

	n := 0
	for _, err := range (Client{}).Batches(context.Background(), u) {
		require.NoError(t, err)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestClient_DialFailure(t *testing.T) {
	_, _, u := newTestServer(t, DefaultConfig())

	calls := 0
	for _, err := range (Client{}).Batches(context.Background(), u+"?seed=abc") {
		calls++
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	}
	assert.Equal(t, 1, calls)
}
