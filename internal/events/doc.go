// Package events provides types and interfaces for an event-driven architecture.
//
// Score sessions and the game service emit events when a user's record
// changes or a game finishes, without knowing which handlers will process
// them.
//
// The primary components are:
//   - Event: a typed notification carrying a JSON payload
//   - EventHandler: interface for components that can handle events
//   - EventEmitter: interface for components that can emit events
package events
