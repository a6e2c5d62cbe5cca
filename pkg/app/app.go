// Package app defines the runtime contract shared by executable entrypoints.
package app

// Runner represents a runnable application component.
type Runner interface {
	Run() error
}
