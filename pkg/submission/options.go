package submission

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type settings struct {
	logger   *zap.Logger
	observer Observer
}

// Option configures the orchestrator.
type Option func(*settings)

// WithLogger sets a custom logger for the orchestrator and its components.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithObserver registers an observer that receives the progress of every run.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

type runSettings struct {
	runID    string
	observer Observer
}

// RunOption configures a single Submit call.
type RunOption func(*runSettings)

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) RunOption {
	return func(s *runSettings) { s.runID = id }
}

// WithRunObserver registers an observer for this run only. It is called in
// addition to the orchestrator-wide observer.
func WithRunObserver(o Observer) RunOption {
	return func(s *runSettings) { s.observer = o }
}

func applyRunOptions(opts []RunOption) runSettings {
	var s runSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	return s
}
