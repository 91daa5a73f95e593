package gameapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/valyala/fasthttp"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/seabattle-client/internal/board"
	"github.com/park285/seabattle-client/internal/clock"
	"github.com/park285/seabattle-client/internal/game"
	"github.com/park285/seabattle-client/pkg/wire"
)

// gameSocket answers every framed request with reply, after pushing one tick.
func gameSocket(t *testing.T, reply func(env wire.Envelope) map[string]any) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	router.Get("/ws/game/{id}/", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "g-1" {
			http.NotFound(w, r)
			return
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		for {
			var env wire.Envelope
			if err := wsjson.Read(ctx, c, &env); err != nil {
				return
			}
			_ = wsjson.Write(ctx, c, map[string]any{"type": "tick", "turn": 2, "paused": false, "finished": false})
			body := reply(env)
			body["reply_to"] = env.ID
			if err := wsjson.Write(ctx, c, body); err != nil {
				return
			}
		}
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSCorrelatesRepliesAndForwardsPushes(t *testing.T) {
	srv := gameSocket(t, func(env wire.Envelope) map[string]any {
		if env.Type != wire.TypeGroupCandidates || env.ID == "" {
			return map[string]any{"ok": false, "error": "unexpected " + env.Type}
		}
		return map[string]any{"ok": true, "candidates": [][2]int{{1, 2}, {1, 3}}}
	})
	ws := NewWSClient(wsURL(srv), WithReplyTimeout(2*time.Second))
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	r := NewRemote(ModeWS, nil, ws, nil)

	ticks := make(chan *clock.Tick, 4)
	remove := r.OnPush(func(_ *game.Snapshot, tick *clock.Tick) {
		if tick != nil {
			ticks <- tick
		}
	})
	defer remove()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	got, err := r.GroupCandidates(ctx, "g-1", board.Coord{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 2 || got[0] != (board.Coord{X: 1, Y: 2}) {
		t.Fatalf("unexpected candidates: %v", got)
	}
	if !ws.ConnectedTo("g-1") {
		t.Fatalf("expected live connection, state=%s", ws.State())
	}

	select {
	case tick := <-ticks:
		if tick.Turn != board.Seat2 {
			t.Fatalf("unexpected pushed tick: %+v", tick)
		}
	case <-ctx.Done():
		t.Fatalf("no tick pushed")
	}
}

func TestWSRejectionKeepsServerMessage(t *testing.T) {
	srv := gameSocket(t, func(env wire.Envelope) map[string]any {
		return map[string]any{"ok": false, "message": "пауза уже использована"}
	})
	ws := NewWSClient(wsURL(srv))
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	r := NewRemote(ModeWS, nil, ws, nil)

	err := r.Pause(context.Background(), "g-1", game.PauseShort)
	re, ok := err.(*RequestError)
	if !ok || re.ServerMessage() != "пауза уже использована" {
		t.Fatalf("expected request error, got %v", err)
	}
}

func TestAutoFallsBackToHTTPWhenSocketUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := wsURL(dead)
	dead.Close()

	var posts atomic.Int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		posts.Add(1)
		writeJSON(ctx, 200, `{"ok": true}`)
	})
	ws := NewWSClient(deadURL, WithReconnect(0))
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	r := NewRemote(ModeAuto, c, ws, nil)

	for i := 0; i < 2; i++ {
		if err := r.CancelPause(context.Background(), "g-1"); err != nil {
			t.Fatalf("cancel pause #%d: %v", i, err)
		}
	}
	if posts.Load() != 2 {
		t.Fatalf("expected both requests over HTTP, got %d", posts.Load())
	}
	if ws.State() != WSStateFailed {
		t.Fatalf("expected failed socket after dial error, got %s", ws.State())
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeHTTP, "HTTP": ModeHTTP, " ws ": ModeWS, "auto": ModeAuto}
	for in, want := range cases {
		got, ok := ParseMode(in)
		if !ok || got != want {
			t.Fatalf("ParseMode(%q) = %q,%v", in, got, ok)
		}
	}
	if _, ok := ParseMode("carrier-pigeon"); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
}
