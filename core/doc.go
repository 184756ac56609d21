// Package core provides the foundational domain types shared by every Eunice
// component. It defines the core abstractions for:
//
//   - Research tasks and responses (the envelopes agents exchange)
//   - Agent identity, capabilities and lifecycle status
//   - Shared error routing for logging / telemetry
//
// The package intentionally keeps implementation concerns (cost accounting,
// transport, concrete agents) in their respective packages, exposing small
// types so the rest of the module can depend on it without cycles.
package core
