package panel

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"chatpanel/logger"
)

//go:embed assets/index.html
var assetFS embed.FS

const (
	eventBufferSize  = 16
	shutdownTimeout  = 2 * time.Second
	sendWriteTimeout = 5 * time.Second
)

// Config contains panel settings.
type Config struct {
	Addr string // listen address, e.g. 127.0.0.1:8217
}

// Panel serves the embedded content surface over HTTP and owns the websocket
// relay to it. Each construction is independent; nothing prevents several
// panels from coexisting in separate processes.
type Panel struct {
	addr   string
	events chan Event

	srv *http.Server
	ln  net.Listener

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a panel bound to the given address.
func New(cfg Config) *Panel {
	return &Panel{
		addr:   cfg.Addr,
		events: make(chan Event, eventBufferSize),
		conns:  make(map[*websocket.Conn]struct{}),
		done:   make(chan struct{}),
	}
}

// Start binds the listener and begins serving the surface. It returns once
// the listener is bound; serving continues in the background.
func (p *Panel) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("panel listen on %s: %w", p.addr, err)
	}
	p.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", p.handleIndex)
	mux.HandleFunc("/ws", p.handleWS)

	p.srv = &http.Server{
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("panel server stopped", "err", err)
		}
	}()

	logger.Info("panel started", "url", p.URL())
	return nil
}

// URL returns the address the surface is served on.
func (p *Panel) URL() string {
	addr := p.addr
	if p.ln != nil {
		addr = p.ln.Addr().String()
	}
	return "http://" + addr + "/"
}

// Events returns the channel of userMessage events from the surface.
func (p *Panel) Events() <-chan Event {
	return p.events
}

// Send pushes an event to every connected surface. With no surface attached
// the event is dropped; the conversation lives only on an open page.
func (p *Panel) Send(ctx context.Context, ev Event) error {
	p.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(p.conns))
	for c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	if len(conns) == 0 {
		logger.Warn("panel send with no connected surface", "type", ev.Type)
		return nil
	}

	var firstErr error
	for _, c := range conns {
		wctx, cancel := context.WithTimeout(ctx, sendWriteTimeout)
		err := wsjson.Write(wctx, c, ev)
		cancel()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("panel send: %w", err)
		}
	}
	return firstErr
}

// Stop shuts the server down and closes the event channel.
func (p *Panel) Stop() error {
	p.stopOnce.Do(func() {
		close(p.done)

		p.mu.Lock()
		for c := range p.conns {
			_ = c.Close(websocket.StatusGoingAway, "panel closing")
		}
		p.conns = map[*websocket.Conn]struct{}{}
		p.mu.Unlock()

		if p.srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := p.srv.Shutdown(ctx); err != nil {
				logger.Warn("panel shutdown", "err", err)
			}
		}

		// All pumps have observed the closed connections before the event
		// channel goes away.
		p.wg.Wait()
		close(p.events)
		logger.Info("panel stopped")
	})
	return nil
}

// handleIndex serves the static surface document. The document carries no
// interpolated values; credentials never reach the surface.
func (p *Panel) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := assetFS.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "surface unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// handleWS upgrades the connection and pumps surface events into the event
// channel until the surface disconnects.
func (p *Panel) handleWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-p.done:
		http.Error(w, "panel closing", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "err", err)
		return
	}

	p.wg.Add(1)
	defer p.wg.Done()

	p.mu.Lock()
	p.conns[conn] = struct{}{}
	n := len(p.conns)
	p.mu.Unlock()
	logger.Debug("surface connected", "connections", n)

	defer func() {
		p.mu.Lock()
		delete(p.conns, conn)
		p.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		logger.Debug("surface disconnected")
	}()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		ev, ok, err := DecodeEvent(data)
		if err != nil {
			logger.Debug("undecodable panel message dropped", "err", err)
			continue
		}
		if !ok || ev.Type != EventUserMessage {
			// Unrecognized tags are ignored by contract. botResponse
			// arriving from the surface is equally out of protocol.
			logger.Debug("ignoring panel event", "type", ev.Type)
			continue
		}

		select {
		case p.events <- ev:
		case <-p.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
