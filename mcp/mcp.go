// Package mcp defines the coordination transport agents use to exchange task
// and response envelopes. The wire format is out of scope here: agents depend
// only on the four-operation Client interface, and the in-process
// implementation is what tests and single-binary deployments use.
package mcp

import (
	"context"

	"github.com/eunice-ai/eunice/core"
)

// Client is the minimal coordination surface an agent needs. Implementations
// must be safe for concurrent use.
type Client interface {
	// Connect establishes the transport. Must be called before Send*.
	Connect(ctx context.Context) error
	// Disconnect tears the transport down. Safe to call more than once.
	Disconnect() error
	// SendTask submits a task envelope to the coordination layer.
	SendTask(ctx context.Context, task *core.ResearchAction) error
	// SendResponse publishes a result envelope.
	SendResponse(ctx context.Context, resp *core.AgentResponse) error
}
