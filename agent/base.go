package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eunice-ai/eunice/core"
	"github.com/eunice-ai/eunice/logging"
	"github.com/eunice-ai/eunice/mcp"
)

// Handler executes one admitted task. The context is cancelled when the
// agent shuts down; handlers doing I/O must respect it. The returned map is
// wrapped verbatim into a completed response.
type Handler func(ctx context.Context, task *core.ResearchAction) (map[string]any, error)

// Options holds dependency + configuration overrides passed to NewBaseAgent.
type Options struct {
	// MaxConcurrentTasks bounds how many tasks may be active at once.
	// Admission beyond the bound is rejected with a structured failure;
	// callers are expected to retry.
	MaxConcurrentTasks int
	// Client is the coordination transport. Defaults to an in-process client.
	Client mcp.Client
	// Logger receives lifecycle diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// Errors is the shared failure sink. Defaults to a handler over Logger.
	Errors *core.ErrorHandler
	// InitHook runs at the end of Initialize; an error fails initialization.
	InitHook func(ctx context.Context) error
	// CleanupHook runs during Stop after active tasks are cancelled.
	CleanupHook func() error
}

// activeTask pairs an admitted envelope with the cancel handle for its
// per-task context, so Stop can abort the work itself, not only the record.
type activeTask struct {
	task   *core.ResearchAction
	cancel context.CancelFunc
}

// BaseAgent bundles the uniform state machine, task admission policy and
// bookkeeping every concrete agent builds on. Concrete agents embed it,
// declare their capability set and register one handler per action; the
// pairing is verified during Initialize so a declared-but-unhandled action
// is a startup failure, not a runtime surprise.
//
// All exported methods are safe for concurrent use.
type BaseAgent struct {
	name      string
	agentType core.AgentType

	mu           sync.Mutex
	status       core.AgentStatus
	isRunning    bool
	capabilities []core.Action
	capSet       map[core.Action]bool
	handlers     map[core.Action]Handler

	maxConcurrentTasks int
	active             map[string]*activeTask
	completed          []string
	failed             []string
	currentTask        string

	taskCount     int
	successCount  int
	errorCount    int
	totalDuration time.Duration

	client      mcp.Client
	logger      logging.Logger
	errs        *core.ErrorHandler
	initHook    func(ctx context.Context) error
	cleanupHook func() error
}

// NewBaseAgent constructs a BaseAgent in the Initializing state. The
// capability list is the closed set of actions the agent will admit;
// handlers for each must be registered before Initialize runs.
func NewBaseAgent(name string, agentType core.AgentType, capabilities []core.Action, optFns ...func(o *Options)) *BaseAgent {
	opts := Options{
		MaxConcurrentTasks: 3,
		Client:             mcp.NewInProcClient(16),
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Errors == nil {
		opts.Errors = core.NewErrorHandler(opts.Logger)
	}

	capSet := make(map[core.Action]bool, len(capabilities))
	for _, action := range capabilities {
		capSet[action] = true
	}

	return &BaseAgent{
		name:               name,
		agentType:          agentType,
		status:             core.StatusInitializing,
		capabilities:       capabilities,
		capSet:             capSet,
		handlers:           make(map[core.Action]Handler),
		maxConcurrentTasks: opts.MaxConcurrentTasks,
		active:             make(map[string]*activeTask),
		client:             opts.Client,
		logger:             opts.Logger,
		errs:               opts.Errors,
		initHook:           opts.InitHook,
		cleanupHook:        opts.CleanupHook,
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Type returns the routing category for this agent.
func (b *BaseAgent) Type() core.AgentType { return b.agentType }

// Status returns the current lifecycle state.
func (b *BaseAgent) Status() core.AgentStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Capabilities returns a copy of the declared action set.
func (b *BaseAgent) Capabilities() []core.Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Action, len(b.capabilities))
	copy(out, b.capabilities)
	return out
}

// RegisterHandler binds a handler to an action. Concrete agents call this
// from their constructors, before Initialize verifies the dispatch table.
func (b *BaseAgent) RegisterHandler(action core.Action, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[action] = h
}

// Initialize connects the transport, verifies the dispatch table and runs
// the subclass init hook. On any failure the agent transitions to Error,
// the failure is routed through the shared error handler and a non-nil
// error is returned; Initialize never panics outward.
func (b *BaseAgent) Initialize(ctx context.Context) error {
	if err := b.initialize(ctx); err != nil {
		b.mu.Lock()
		b.status = core.StatusError
		b.mu.Unlock()
		b.errs.Handle(b.name, err)
		return err
	}

	b.mu.Lock()
	b.status = core.StatusReady
	b.isRunning = true
	b.mu.Unlock()

	b.logger.Info("agent initialized",
		"agent", b.name, "type", string(b.agentType), "capabilities", len(b.capabilities))
	return nil
}

func (b *BaseAgent) initialize(ctx context.Context) error {
	b.mu.Lock()
	for _, action := range b.capabilities {
		if _, ok := b.handlers[action]; !ok {
			b.mu.Unlock()
			return fmt.Errorf("declared capability %q has no registered handler", action)
		}
	}
	b.mu.Unlock()

	if err := b.client.Connect(ctx); err != nil {
		return fmt.Errorf("connect coordination client: %w", err)
	}

	if b.initHook != nil {
		if err := b.initHook(ctx); err != nil {
			return fmt.Errorf("agent init hook: %w", err)
		}
	}
	return nil
}

// CanHandle reports whether the action is in the agent's declared set.
func (b *BaseAgent) CanHandle(action core.Action) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capSet[action]
}

// ActiveTaskCount returns how many tasks are currently admitted.
func (b *BaseAgent) ActiveTaskCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// ProcessTask admits, executes and resolves one task.
//
// Admission runs two gates, each answered with a structured failed response
// and no state mutation: the action must be in the agent's capability set,
// and the active task count must be below the concurrency bound.
//
// Once admitted the task runs under its own cancellable context. A handler
// error (or recovered panic) yields a failed response and leaves the agent
// Ready; a single task failure never disables the agent. In every outcome
// the task id is removed from the active set before ProcessTask returns.
func (b *BaseAgent) ProcessTask(ctx context.Context, task *core.ResearchAction) *core.AgentResponse {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return core.NewFailedResponse(task, fmt.Sprintf("agent %s is not running", b.name))
	}
	if !b.capSet[task.Action] {
		b.mu.Unlock()
		return core.NewFailedResponse(task, fmt.Sprintf("action %q not supported by agent %s", task.Action, b.name))
	}
	if len(b.active) >= b.maxConcurrentTasks {
		b.mu.Unlock()
		return core.NewFailedResponse(task, fmt.Sprintf(
			"agent %s at capacity (%d active tasks)", b.name, b.maxConcurrentTasks))
	}

	taskCtx, cancel := context.WithCancel(ctx)
	b.status = core.StatusWorking
	b.active[task.TaskID] = &activeTask{task: task, cancel: cancel}
	b.currentTask = task.TaskID
	b.taskCount++
	handler := b.handlers[task.Action]
	b.mu.Unlock()

	start := time.Now()
	result, err := invokeHandler(taskCtx, handler, task)
	duration := time.Since(start)
	cancel()

	b.mu.Lock()
	delete(b.active, task.TaskID)
	if b.currentTask == task.TaskID {
		b.currentTask = ""
	}
	if b.status == core.StatusWorking {
		b.status = core.StatusReady
	}
	b.totalDuration += duration

	if err != nil {
		b.failed = append(b.failed, task.TaskID)
		b.errorCount++
		b.mu.Unlock()

		b.errs.Handle(b.name, err)
		b.logger.Warn("task failed",
			"agent", b.name, "task_id", task.TaskID, "action", string(task.Action), "error", err.Error())
		resp := core.NewFailedResponse(task, err.Error())
		resp.Duration = duration
		return resp
	}

	b.completed = append(b.completed, task.TaskID)
	b.successCount++
	b.mu.Unlock()

	b.logger.Debug("task completed",
		"agent", b.name, "task_id", task.TaskID, "action", string(task.Action), "duration", duration)
	resp := core.NewCompletedResponse(task, result)
	resp.Duration = duration
	return resp
}

// invokeHandler runs a handler, converting a panic into an error so domain
// bugs surface as failed responses instead of crashing the agent.
func invokeHandler(ctx context.Context, h Handler, task *core.ResearchAction) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, task)
}

// Stop shuts the agent down: every active task's context is cancelled, a
// cancelled response is published for each, the transport is disconnected
// and the cleanup hook runs. Stop is idempotent; repeated calls return nil.
func (b *BaseAgent) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.status == core.StatusShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isRunning = false
	b.status = core.StatusShutdown

	orphans := make([]*activeTask, 0, len(b.active))
	for id, at := range b.active {
		orphans = append(orphans, at)
		b.failed = append(b.failed, id)
		delete(b.active, id)
	}
	b.currentTask = ""
	b.mu.Unlock()

	var errs []error
	for _, at := range orphans {
		at.cancel()
		if err := b.client.SendResponse(ctx, core.NewCancelledResponse(at.task)); err != nil {
			errs = append(errs, fmt.Errorf("send cancellation for %s: %w", at.task.TaskID, err))
		}
	}

	if err := b.client.Disconnect(); err != nil {
		errs = append(errs, fmt.Errorf("disconnect coordination client: %w", err))
	}
	if b.cleanupHook != nil {
		if err := b.cleanupHook(); err != nil {
			errs = append(errs, fmt.Errorf("agent cleanup hook: %w", err))
		}
	}

	b.logger.Info("agent stopped", "agent", b.name, "cancelled_tasks", len(orphans))
	return errors.Join(errs...)
}

// Stats is a point-in-time snapshot of the agent's bookkeeping counters.
type Stats struct {
	Status       core.AgentStatus `json:"status"`
	CurrentTask  string           `json:"current_task,omitempty"`
	ActiveTasks  int              `json:"active_tasks"`
	TaskCount    int              `json:"task_count"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	AvgDuration  time.Duration    `json:"avg_duration"`
}

// Stats returns a snapshot of the lifecycle counters. CurrentTask reflects
// only the most recently admitted task, a reporting limitation when several
// tasks are interleaved.
func (b *BaseAgent) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Stats{
		Status:       b.status,
		CurrentTask:  b.currentTask,
		ActiveTasks:  len(b.active),
		TaskCount:    b.taskCount,
		SuccessCount: b.successCount,
		ErrorCount:   b.errorCount,
	}
	finished := b.successCount + b.errorCount
	if finished > 0 {
		s.AvgDuration = b.totalDuration / time.Duration(finished)
	}
	return s
}

// CompletedTasks returns a copy of the completed task id list.
func (b *BaseAgent) CompletedTasks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.completed))
	copy(out, b.completed)
	return out
}

// FailedTasks returns a copy of the failed task id list (including tasks
// cancelled during shutdown).
func (b *BaseAgent) FailedTasks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.failed))
	copy(out, b.failed)
	return out
}
