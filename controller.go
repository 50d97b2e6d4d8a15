package racketbot

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/racketbot/pkg/domain"
)

// ErrNotInitialized is returned by SubmitAnswer before Initialize.
var ErrNotInitialized = errors.New("controller not initialized")

// ErrAlreadyInitialized is returned by a second Initialize call.
var ErrAlreadyInitialized = errors.New("controller already initialized")

// Controller owns the state of a single conversation.
//
// The mutex only guards state swaps. It is released during the recommendation call, and
// the state is already awaiting the service by then, so a concurrent SubmitAnswer is
// rejected with domain.ErrAwaitingService instead of starting a second call.
type Controller struct {
	engine    *Engine
	sessionID string

	mu    sync.Mutex
	state *domain.State
}

// NewController creates a controller for one session. Call Initialize before use.
func NewController(engine *Engine, sessionID string) *Controller {
	return &Controller{engine: engine, sessionID: sessionID}
}

// Resume creates a controller around a previously persisted state.
func Resume(engine *Engine, state *domain.State) *Controller {
	return &Controller{engine: engine, sessionID: state.SessionID, state: state.Snapshot()}
}

// Initialize appends the greeting and the first prompt. It runs once per session.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != nil {
		return ErrAlreadyInitialized
	}
	c.state = c.engine.Start(ctx, c.sessionID)
	return nil
}

// SubmitAnswer records one answer and, after the last prompt, performs the
// recommendation call before returning.
func (c *Controller) SubmitAnswer(ctx context.Context, raw string) error {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	next, effects, err := c.engine.Submit(ctx, c.state, raw)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.mu.Unlock()

	if len(effects) == 0 {
		return nil
	}

	final, err := c.engine.Execute(ctx, next, effects)

	c.mu.Lock()
	c.state = final
	c.mu.Unlock()
	return err
}

// State returns a snapshot of the current conversation.
func (c *Controller) State() *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}
