// Package session wires the panel bridge to the completion client.
package session

import (
	"context"

	"github.com/google/uuid"

	"chatpanel/completion"
	"chatpanel/logger"
	"chatpanel/panel"
)

// Bridge is the subset of the panel the controller needs. Satisfied by
// *panel.Panel; tests substitute an in-memory implementation.
type Bridge interface {
	Send(ctx context.Context, ev panel.Event) error
	Events() <-chan panel.Event
}

// Notifier surfaces a host-level message to the user, outside the panel.
type Notifier func(msg string)

// Controller runs one chat session over a configuration snapshot taken at
// invocation time.
type Controller struct {
	bridge    Bridge
	completer completion.Completer
	notify    Notifier
}

// New creates a controller. A nil notifier is replaced with a no-op.
func New(bridge Bridge, completer completion.Completer, notify Notifier) *Controller {
	if notify == nil {
		notify = func(string) {}
	}
	return &Controller{
		bridge:    bridge,
		completer: completer,
		notify:    notify,
	}
}

// Run consumes userMessage events until the context is cancelled or the
// bridge closes its event channel. Each turn is dispatched on its own
// goroutine: a second message arriving while a completion is pending is
// handled concurrently, and responses carry no ordering guarantee.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.bridge.Events():
			if !ok {
				return
			}
			if ev.Type != panel.EventUserMessage {
				continue
			}
			go c.handleTurn(ctx, ev.Text)
		}
	}
}

// handleTurn performs one request/response cycle. Failures stop here: the
// user is notified at host level and no event is posted back to the panel,
// so the triggering turn stays unanswered in the surface log.
func (c *Controller) handleTurn(ctx context.Context, text string) {
	turnID := uuid.NewString()
	logger.Debug("turn received", "turn", turnID, "chars", len(text))

	reply, err := c.completer.Complete(ctx, text)
	if err != nil {
		logger.Error("completion failed", "turn", turnID, "err", err)
		c.notify(err.Error())
		return
	}

	if err := c.bridge.Send(ctx, panel.BotResponse(reply)); err != nil {
		logger.Error("panel send failed", "turn", turnID, "err", err)
		c.notify(err.Error())
		return
	}
	logger.Debug("turn answered", "turn", turnID, "chars", len(reply))
}
