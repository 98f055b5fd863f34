package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer plays the server side of the protocol: connected, auth, then
// one frame of events per subscribe.
func fakeServer(t *testing.T, key string, frames ...string) (string, chan string) {
	t.Helper()
	actions := make(chan string, 8)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`[{"ev":"status","status":"connected","message":"Connected Successfully"}]`))

		var auth action
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		actions <- auth.Action + ":" + auth.Params
		if auth.Params != key {
			conn.WriteMessage(websocket.TextMessage, []byte(`[{"ev":"status","status":"auth_failed","message":"authentication failed"}]`))
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"ev":"status","status":"auth_success","message":"authenticated"}]`))

		var sub action
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		actions <- sub.Action + ":" + sub.Params
		for _, f := range frames {
			conn.WriteMessage(websocket.TextMessage, []byte(f))
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), actions
}

func TestStreamDeliversEvents(t *testing.T) {
	url, actions := fakeServer(t, "secret",
		`[{"ev":"status","status":"success","message":"subscribed to: T.AAPL"}]`,
		`[{"ev":"T","sym":"AAPL","p":185.3,"s":100},{"ev":"Q","sym":"AAPL","bp":185.2,"ap":185.4}]`,
		`not json`,
		`[{"ev":"T","sym":"AAPL","p":185.35,"s":50}]`,
	)

	ctx := context.Background()
	c, err := Dial(ctx, Options{URL: url, Cluster: "stocks", APIKey: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.Subscribe("T.AAPL, Q.AAPL", ""))

	var got []json.RawMessage
	err = c.Run(ctx, func(ev json.RawMessage) error {
		got = append(got, ev)
		if len(got) == 3 {
			return ErrStop
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.JSONEq(t, `{"ev":"T","sym":"AAPL","p":185.35,"s":50}`, string(got[2]))

	assert.Equal(t, "auth:secret", <-actions)
	assert.Equal(t, "subscribe:T.AAPL,Q.AAPL", <-actions)
}

func TestStreamAuthFailure(t *testing.T) {
	url, _ := fakeServer(t, "secret")

	_, err := Dial(context.Background(), Options{URL: url, Cluster: "stocks", APIKey: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthFailed))
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestStreamStopsOnCancel(t *testing.T) {
	url, _ := fakeServer(t, "secret")

	c, err := Dial(context.Background(), Options{URL: url, Cluster: "stocks", APIKey: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.Subscribe("T.*"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = c.Run(ctx, func(json.RawMessage) error { return nil })
	assert.NoError(t, err)
}

func TestStreamHandlerError(t *testing.T) {
	url, _ := fakeServer(t, "secret", `[{"ev":"T","sym":"AAPL"}]`)

	c, err := Dial(context.Background(), Options{URL: url, Cluster: "stocks", APIKey: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.Subscribe("T.AAPL"))

	boom := errors.New("boom")
	err = c.Run(context.Background(), func(json.RawMessage) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDialValidation(t *testing.T) {
	_, err := Dial(context.Background(), Options{URL: "ws://localhost", Cluster: "stocks"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = Dial(context.Background(), Options{URL: "ws://localhost", Cluster: "bonds", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown cluster "bonds"`)
}

func TestSubscribeRequiresChannels(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.Subscribe(" , "))
}
