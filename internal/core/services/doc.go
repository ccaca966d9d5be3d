// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no direct I/O of their own; all
// network and storage access goes through driven ports.
package services
