package submission

// EventType names a progress notification emitted during a run.
type EventType string

const (
	EventPlanned       EventType = "planned"
	EventStepStarted   EventType = "step_started"
	EventStepSubmitted EventType = "step_submitted"
	EventStepFailed    EventType = "step_failed"
	EventStepSkipped   EventType = "step_skipped"
	EventWatching      EventType = "watching"
	EventCompleted     EventType = "completed"
	EventFailed        EventType = "failed"
)

// StepEvent is a progress notification. Step and Index are only set for step
// events; Plan only for EventPlanned.
type StepEvent struct {
	RunID string
	Type  EventType
	Index int
	Step  StepKind
	Plan  []Step
	Tx    *TransactionHandle
	Err   error
}

// Observer receives progress notifications. It is called synchronously on the
// run's goroutine and must not block.
type Observer func(StepEvent)

func (o Observer) emit(ev StepEvent) {
	if o != nil {
		o(ev)
	}
}
