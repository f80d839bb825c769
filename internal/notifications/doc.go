// Package notifications pushes workflow milestones to ntfy.
//
// NewService returns a no-op when no topic is configured. Each event family
// (steps, renders, errors) can be switched off in config.toml.
package notifications
