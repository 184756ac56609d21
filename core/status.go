package core

// AgentStatus is the lifecycle state of a single agent instance. Exactly one
// agent owns its status; there is no cross-agent sharing. Transitions:
//
//	Initializing -(Initialize ok)-> Ready -(task admitted)-> Working
//	Working -(task done, success or failure)-> Ready
//	Initializing|Ready|Working -(Initialize failure)-> Error
//	any -(Stop)-> Shutdown
//
// A single task failure never transitions an agent to Error; failures are
// task-scoped, Error is reserved for initialization problems.
type AgentStatus int

const (
	// StatusInitializing is the state before Initialize has completed.
	StatusInitializing AgentStatus = iota
	// StatusReady means the agent can admit tasks.
	StatusReady
	// StatusWorking means at least one task was recently admitted.
	StatusWorking
	// StatusError means initialization failed; the agent will not admit tasks.
	StatusError
	// StatusShutdown means Stop has been called.
	StatusShutdown
)

// String returns the lowercase wire representation of the status.
func (s AgentStatus) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusReady:
		return "ready"
	case StatusWorking:
		return "working"
	case StatusError:
		return "error"
	case StatusShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
