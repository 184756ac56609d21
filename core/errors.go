package core

import (
	"sync"

	"github.com/eunice-ai/eunice/logging"
)

// ErrorHandler is the shared sink every component routes failures through.
// It never rethrows; it records the error with its origin so operators see a
// single stream of component failures regardless of which agent hit them.
// Safe for concurrent use.
type ErrorHandler struct {
	mu     sync.Mutex
	logger logging.Logger
	counts map[string]int
}

// NewErrorHandler constructs an ErrorHandler writing to the given logger.
// A nil logger is substituted with a NoOpLogger.
func NewErrorHandler(logger logging.Logger) *ErrorHandler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &ErrorHandler{logger: logger, counts: make(map[string]int)}
}

// Handle records err as originating from component. Nil errors are ignored.
func (h *ErrorHandler) Handle(component string, err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	h.counts[component]++
	h.mu.Unlock()
	h.logger.Error("component error", "component", component, "error", err.Error())
}

// Count returns how many errors a component has routed through the handler.
func (h *ErrorHandler) Count(component string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[component]
}
