package mcp

import (
	"context"
	"errors"
	"sync"

	"github.com/eunice-ai/eunice/core"
)

// ErrNotConnected is returned by Send* when Connect has not succeeded yet or
// Disconnect has already run.
var ErrNotConnected = errors.New("mcp: client not connected")

// InProcClient is a channel-backed Client for tests and single-process
// deployments. Envelopes are buffered; sends block only when a buffer is
// full and respect context cancellation. Safe for concurrent use.
type InProcClient struct {
	mu        sync.Mutex
	connected bool

	tasks     chan *core.ResearchAction
	responses chan *core.AgentResponse
}

// NewInProcClient constructs an InProcClient with the given channel buffer
// size (minimum 1).
func NewInProcClient(buffer int) *InProcClient {
	if buffer < 1 {
		buffer = 1
	}
	return &InProcClient{
		tasks:     make(chan *core.ResearchAction, buffer),
		responses: make(chan *core.AgentResponse, buffer),
	}
}

// Connect implements Client.
func (c *InProcClient) Connect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

// Disconnect implements Client. Idempotent.
func (c *InProcClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *InProcClient) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SendTask implements Client.
func (c *InProcClient) SendTask(ctx context.Context, task *core.ResearchAction) error {
	if !c.isConnected() {
		return ErrNotConnected
	}
	select {
	case c.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendResponse implements Client.
func (c *InProcClient) SendResponse(ctx context.Context, resp *core.AgentResponse) error {
	if !c.isConnected() {
		return ErrNotConnected
	}
	select {
	case c.responses <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tasks exposes the task stream for consumers.
func (c *InProcClient) Tasks() <-chan *core.ResearchAction { return c.tasks }

// Responses exposes the response stream for consumers.
func (c *InProcClient) Responses() <-chan *core.AgentResponse { return c.responses }
