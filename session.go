package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// errViewGone ends a session whose backing room no longer exists.
var errViewGone = errors.New("view source is gone")

// liveView runs one session: subscribe, render on every wake, unsubscribe on
// every exit path. The render callback re-reads the store and returns a
// markup fragment; the session never inspects its content. A self-wake right
// after subscribing guarantees an initial render even if nothing is ever
// published.
//
// The session ends when the client disconnects, the context is cancelled,
// the queue is dropped (room reaped), or render reports the view is gone.
func liveView(ctx context.Context, cfg *Config, registry *Registry, conn *websocket.Conn, channel, subscriber string, render func() (string, error)) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := registry.Subscribe(channel, subscriber)
	defer registry.Unsubscribe(channel, subscriber)

	queue.wake()

	// The client sends nothing meaningful; reading only detects disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()

				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-queue.done:
			logf(cfg, "VIEWS: Channel %q dropped, closing session for %s", channel, subscriber)

			return

		case <-queue.tokens:
			fragment, err := render()
			if err != nil {
				if !errors.Is(err, errViewGone) {
					logf(cfg, "VIEWS: Render failed on %q for %s: %v", channel, subscriber, err)
				}

				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, []byte(fragment)); err != nil {
				return
			}
		}
	}
}
