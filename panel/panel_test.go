package panel

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

func startTestPanel(t *testing.T) *Panel {
	t.Helper()
	p := New(Config{Addr: "127.0.0.1:0"})
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start panel: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop() })
	return p
}

func dialSurface(t *testing.T, p *Panel) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(p.URL(), "http://", "ws://", 1) + "ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func TestPanelServesSurface(t *testing.T) {
	p := startTestPanel(t)

	resp, err := http.Get(p.URL())
	if err != nil {
		t.Fatalf("get surface: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %s", resp.Status)
	}
	body, _ := io.ReadAll(resp.Body)
	doc := string(body)
	if !strings.Contains(doc, "userMessage") || !strings.Contains(doc, "botResponse") {
		t.Error("surface script missing event wiring")
	}
	// The surface must be static; no credential should ever be interpolated.
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type: %s", resp.Header.Get("Content-Type"))
	}
}

func TestPanelRelaysUserMessage(t *testing.T) {
	p := startTestPanel(t)
	conn := dialSurface(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, UserMessage("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-p.Events():
		if ev.Type != EventUserMessage || ev.Text != "hello" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event relayed")
	}
}

func TestPanelIgnoresUnknownEvents(t *testing.T) {
	p := startTestPanel(t)
	conn := dialSurface(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// An unknown tag followed by a known one: only the known one arrives,
	// proving the unknown tag was dropped without killing the connection.
	if err := wsjson.Write(ctx, conn, map[string]string{"type": "ping", "text": "x"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	if err := wsjson.Write(ctx, conn, UserMessage("after")); err != nil {
		t.Fatalf("write known: %v", err)
	}

	select {
	case ev := <-p.Events():
		if ev.Text != "after" {
			t.Errorf("unknown event leaked through: %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("known event not relayed")
	}
}

func TestPanelSendReachesSurface(t *testing.T) {
	p := startTestPanel(t)
	conn := dialSurface(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Send(ctx, BotResponse("hi there")); err != nil {
		t.Fatalf("send: %v", err)
	}

	var ev Event
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != EventBotResponse || ev.Text != "hi there" {
		t.Errorf("unexpected event at surface: %+v", ev)
	}
}

func TestPanelSendWithoutSurface(t *testing.T) {
	p := startTestPanel(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// No connected surface: the event is dropped, not an error.
	if err := p.Send(ctx, BotResponse("lost")); err != nil {
		t.Errorf("send without surface should not fail: %v", err)
	}
}

func TestPanelStopClosesEvents(t *testing.T) {
	p := New(Config{Addr: "127.0.0.1:0"})
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case _, ok := <-p.Events():
		if ok {
			t.Error("expected closed event channel")
		}
	case <-time.After(time.Second):
		t.Fatal("event channel not closed")
	}
	// Stop is idempotent.
	if err := p.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}
}
