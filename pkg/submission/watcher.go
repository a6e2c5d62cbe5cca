package submission

import (
	"context"
	"sync"
	"time"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"go.uber.org/zap"
)

// WatchState is the state of a single completion watch.
type WatchState string

const (
	WatchIdle     WatchState = "idle"
	WatchWatching WatchState = "watching"
	WatchResolved WatchState = "resolved"
	WatchErrored  WatchState = "errored"
)

// CompletionWatcher waits for the downstream acknowledgement of a transfer
// instead of trusting that the transfer transaction landed.
type CompletionWatcher struct {
	subscriber EventSubscriber
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCompletionWatcher creates a watcher. A zero timeout waits until the
// context passed to Await is cancelled.
func NewCompletionWatcher(subscriber EventSubscriber, timeout time.Duration, logger *zap.Logger) *CompletionWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionWatcher{subscriber: subscriber, timeout: timeout, logger: logger}
}

// Await subscribes to the completion event and blocks until the first
// matching event, a stream error, the timeout or ctx cancellation.
func (c *CompletionWatcher) Await(ctx context.Context, corr Correlation) (CompletionEvent, error) {
	start := time.Now()
	w := newWatch()

	c.logger.Info("Watching for completion event",
		zap.String("contract", corr.Contract.Hex()),
		zap.String("event", corr.EventKind),
		zap.Uint64("from_block", corr.FromBlock))

	ev, err := w.run(ctx, c.subscriber, corr, c.timeout)
	metrics.CompletionWaitDuration.WithLabelValues(string(w.State())).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("Completion watch ended without event", zap.Error(err))
		return CompletionEvent{}, err
	}

	c.logger.Info("Completion event received",
		zap.String("tx_hash", ev.TxHash.Hex()),
		zap.Uint64("block_number", ev.BlockNumber))
	return ev, nil
}

// watch is one Idle -> Watching -> {Resolved | Errored} state machine. The
// subscription is disposed exactly once, on the first transition out of
// Watching; callbacks arriving after that are ignored.
type watch struct {
	mu          sync.Mutex
	state       WatchState
	unsubscribe func()
	done        chan struct{}

	event CompletionEvent
	err   error
}

func newWatch() *watch {
	return &watch{state: WatchIdle, done: make(chan struct{})}
}

// State returns the current state.
func (w *watch) State() WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *watch) run(ctx context.Context, sub EventSubscriber, corr Correlation, timeout time.Duration) (CompletionEvent, error) {
	w.mu.Lock()
	w.state = WatchWatching
	w.mu.Unlock()

	unsubscribe, err := sub.SubscribeCompletionEvent(ctx, corr, w.resolve, func(err error) {
		w.fail(newError(KindWatchFailure, StepTransfer, err))
	})
	if err != nil {
		w.fail(newError(KindWatchFailure, StepTransfer, err))
	} else {
		w.attach(unsubscribe)
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		w.fail(newError(KindCancelled, StepTransfer, ctx.Err()))
	case <-timeoutCh:
		w.fail(newError(KindCompletionTimeout, StepTransfer, nil))
	}

	<-w.done
	return w.event, w.err
}

// attach stores the unsubscribe func, or calls it right away when the watch
// already finished while the subscription was being set up.
func (w *watch) attach(unsubscribe func()) {
	if unsubscribe == nil {
		return
	}
	w.mu.Lock()
	if w.state == WatchWatching {
		w.unsubscribe = unsubscribe
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	unsubscribe()
}

func (w *watch) resolve(ev CompletionEvent) {
	w.finish(WatchResolved, ev, nil)
}

func (w *watch) fail(err error) {
	w.finish(WatchErrored, CompletionEvent{}, err)
}

func (w *watch) finish(to WatchState, ev CompletionEvent, err error) bool {
	w.mu.Lock()
	if w.state != WatchWatching {
		w.mu.Unlock()
		return false
	}
	w.state = to
	w.event = ev
	w.err = err
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	close(w.done)
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	return true
}
