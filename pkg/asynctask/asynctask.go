// Package asynctask implements the fire-and-forget, block-id-addressed
// task host of spec.md §5 / SPEC_FULL.md §4.15: the one sanctioned
// concurrency boundary of the core, used by upload-style plugins that
// need to launch real work from an observer and deliver its result as a
// later, independent transaction.
package asynctask

import (
	"context"
	"sync"
	"time"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/Samyssmile/notectl/pkg/editorstate"
	"github.com/Samyssmile/notectl/pkg/nodeid"
	"github.com/Samyssmile/notectl/pkg/pluginhost"
	"github.com/Samyssmile/notectl/pkg/transaction"
)

// ResultFunc builds the follow-up transaction from the state current at
// delivery time, once the launching task has completed.
type ResultFunc func(st *editorstate.State) *transaction.Transaction

// TaskFunc is the work a Launch call runs on its own goroutine. It may
// return a nil ResultFunc to signal "nothing to apply" without that being
// an error.
type TaskFunc func(ctx context.Context) (ResultFunc, error)

// Host tracks one pending task per block id and redispatches each task's
// result through a pluginhost.Dispatcher, discarding results that target
// a block no longer present when delivery runs.
type Host struct {
	dispatcher pluginhost.Dispatcher
	clock      clock.Clock

	mu      sync.Mutex
	pending map[nodeid.BlockID]*pendingTask
}

// pendingTask identifies one Launch call so a superseded goroutine's own
// cleanup cannot clobber a newer task registered for the same block id.
// context.CancelFunc values are not comparable, so identity is tracked
// through this token's pointer instead.
type pendingTask struct {
	cancel context.CancelFunc
}

// New builds a Host dispatching through d. A nil clk defaults to
// clock.RealClock{}; tests inject a fake clock to drive timeouts
// deterministically instead of sleeping.
func New(d pluginhost.Dispatcher, clk clock.Clock) *Host {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Host{dispatcher: d, clock: clk, pending: make(map[nodeid.BlockID]*pendingTask)}
}

type taskOutcome struct {
	result ResultFunc
	err    error
}

// Launch runs fn on its own goroutine, addressed to blockID. If timeout is
// positive and fn has not completed by then, fn's context is cancelled and
// its eventual result (if any) is discarded. Launching a second task for a
// block id that already has one pending cancels the prior task first, the
// same "newest wins" policy a debounced upload retry needs.
func (h *Host) Launch(blockID nodeid.BlockID, timeout time.Duration, fn TaskFunc) {
	h.Cancel(blockID)

	ctx, cancel := context.WithCancel(context.Background())
	self := &pendingTask{cancel: cancel}
	h.mu.Lock()
	h.pending[blockID] = self
	h.mu.Unlock()

	done := make(chan taskOutcome, 1)
	go func() {
		result, err := fn(ctx)
		done <- taskOutcome{result: result, err: err}
	}()

	go func() {
		defer h.clearPending(blockID, self)

		var timerC <-chan time.Time
		if timeout > 0 {
			timer := h.clock.NewTimer(timeout)
			defer timer.Stop()
			timerC = timer.C()
		}

		select {
		case out := <-done:
			h.deliver(blockID, out)
		case <-timerC:
			cancel()
			klog.V(4).Infof("asynctask: task for block %s timed out after %s", blockID, timeout)
		case <-ctx.Done():
			klog.V(4).Infof("asynctask: task for block %s cancelled", blockID)
		}
	}()
}

// Cancel cancels the pending task for blockID, if any, and reports whether
// one was found.
func (h *Host) Cancel(blockID nodeid.BlockID) bool {
	h.mu.Lock()
	task, ok := h.pending[blockID]
	h.mu.Unlock()
	if ok {
		task.cancel()
	}
	return ok
}

// clearPending removes blockID's entry only if it still points at self, so
// a Launch that replaced it first (via Cancel+re-register) is not
// clobbered by the superseded goroutine's own cleanup.
func (h *Host) clearPending(blockID nodeid.BlockID, self *pendingTask) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.pending[blockID]; ok && current == self {
		delete(h.pending, blockID)
	}
}

func (h *Host) deliver(blockID nodeid.BlockID, out taskOutcome) {
	if out.err != nil {
		klog.V(4).Infof("asynctask: task for block %s failed: %v", blockID, out.err)
		return
	}
	if out.result == nil {
		return
	}
	st := h.dispatcher.State()
	if _, ok := st.Index().Block(blockID); !ok {
		klog.V(4).Infof("asynctask: discarding result for deleted block %s", blockID)
		return
	}
	tx := out.result(st)
	if tx == nil {
		return
	}
	if err := h.dispatcher.Dispatch(tx); err != nil {
		klog.Errorf("asynctask: dispatch for block %s failed: %v", blockID, err)
	}
}
