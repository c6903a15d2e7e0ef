// Package task implements the engine's task base (§4.2): a small state
// machine shared by every task kind in task/kinds, with deadline-bounded
// retry/backoff and a delegate callback for queue/state-change events.
package task

import (
	"fmt"
	"sync"
	"time"

	"gopkg.in/retry.v1"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/handler"
)

// State is a task's current lifecycle stage (§4.2).
type State int

const (
	Ready State = iota
	NeedConnection
	NeedUserConnection
	Transmitting
	Working
	Sleep
	Done
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case NeedConnection:
		return "need_connection"
	case NeedUserConnection:
		return "need_user_connection"
	case Transmitting:
		return "transmitting"
	case Working:
		return "working"
	case Sleep:
		return "sleep"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultLifetime bounds how long a task may keep retrying before it is
// forced Done, mirroring MMS_TASK_DEFAULT_LIFETIME.
const DefaultLifetime = 600 * time.Second

// Delegate observes a task's lifecycle; the dispatcher implements it.
type Delegate interface {
	// TaskQueue is invoked when the task submits a follow-up task (e.g.
	// Notification queuing a Retrieve, or Decode queuing a Publish).
	TaskQueue(t *Task)
	// TaskStateChanged is invoked every time the task's state transitions.
	TaskStateChanged(t *Task)
}

// Behavior is the per-kind logic a task kind plugs into the base: what to
// do when run, when handed a live connection, and when told the network
// is unavailable. This is the Go analogue of MMSTaskClass's function
// pointers.
type Behavior interface {
	// Run is invoked in the Ready state to get the task going.
	Run(t *Task)
	// Transmit is invoked in NeedConnection/NeedUserConnection once a
	// bearer connection has been established.
	Transmit(t *Task, conn *bearer.Connection)
	// NetworkUnavailable is invoked in NeedConnection/NeedUserConnection/
	// Transmitting when the bearer manager could not provide a connection.
	NetworkUnavailable(t *Task)
}

// Task is the shared state machine every task kind embeds behavior into.
type Task struct {
	Name    string
	ID      string
	IMSI    string
	Handler handler.Handler

	behavior Behavior
	delegate Delegate

	retryStrategy retry.Strategy
	retryTimer    retry.Timer

	mu          sync.Mutex
	state       State
	lastRun     time.Time
	deadline    time.Time
	wakeupTime  time.Time
	wakeupTimer *time.Timer
	cancelled   bool
}

// New creates a task in the Ready state with the given behavior, and a
// deadline lifetime from now (DefaultLifetime if lifetime <= 0).
func New(name, id, imsi string, h handler.Handler, b Behavior, lifetime time.Duration) *Task {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	display := name
	if id != "" {
		display = fmt.Sprintf("%s[%.8s]", name, id)
	}
	now := time.Now()
	strategy := DefaultRetryStrategy()
	return &Task{
		Name:          display,
		ID:            id,
		IMSI:          imsi,
		Handler:       h,
		behavior:      b,
		state:         Ready,
		deadline:      now.Add(lifetime),
		retryStrategy: strategy,
		retryTimer:    strategy.NewTimer(now),
	}
}

// retryInterval is the fixed delay DefaultRetryStrategy hands out between
// attempts, set once from config.Config.RetryInterval at startup before
// the dispatcher begins running tasks.
var retryInterval = 15 * time.Second

// SetRetryInterval configures the delay DefaultRetryStrategy uses between
// retries. Call it once at startup, before any task is created.
func SetRetryInterval(d time.Duration) {
	if d > 0 {
		retryInterval = d
	}
}

// DefaultRetryStrategy is the backoff used by Sleep/Retry when no
// explicit duration is given: a single fixed interval, repeated until the
// task's own deadline cuts it off, mirroring mms_task_schedule_wakeup's
// use of one configured retry_secs rather than a backoff curve.
func DefaultRetryStrategy() retry.Strategy {
	return retry.Regular{
		Total: 50 * 365 * 24 * time.Hour,
		Delay: retryInterval,
	}
}

// SetDelegate attaches the observer notified of queue/state events.
func (t *Task) SetDelegate(d Delegate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delegate = d
}

// State returns the task's current lifecycle stage.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Cancelled reports whether Cancel has been called on this task.
func (t *Task) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Deadline returns the time after which the task may no longer Sleep.
func (t *Task) Deadline() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// Run invokes the behavior's Run method; the task must be Ready.
func (t *Task) Run() {
	if t.State() != Ready {
		panic(fmt.Sprintf("task: %s: Run called in state %s", t.Name, t.State()))
	}
	t.behavior.Run(t)
	t.mu.Lock()
	t.lastRun = time.Now()
	t.mu.Unlock()
	if t.State() == Ready {
		panic(fmt.Sprintf("task: %s: Run left task Ready", t.Name))
	}
}

// Transmit invokes the behavior's Transmit method; the task must be in
// NeedConnection or NeedUserConnection.
func (t *Task) Transmit(conn *bearer.Connection) {
	switch t.State() {
	case NeedConnection, NeedUserConnection:
	default:
		panic(fmt.Sprintf("task: %s: Transmit called in state %s", t.Name, t.State()))
	}
	t.behavior.Transmit(t, conn)
	t.mu.Lock()
	t.lastRun = time.Now()
	t.mu.Unlock()
}

// NetworkUnavailable invokes the behavior's NetworkUnavailable method,
// unless the task is already Done.
func (t *Task) NetworkUnavailable() {
	if t.State() == Done {
		return
	}
	switch t.State() {
	case NeedConnection, NeedUserConnection, Transmitting:
	default:
		panic(fmt.Sprintf("task: %s: NetworkUnavailable called in state %s", t.Name, t.State()))
	}
	t.behavior.NetworkUnavailable(t)
	t.mu.Lock()
	t.lastRun = time.Now()
	t.mu.Unlock()
}

// Queue submits a follow-up task to the delegate, if one is attached.
// Task kinds call this from Behavior methods to chain work (e.g.
// Notification queuing a Retrieve, Decode queuing Ack and Publish).
func (t *Task) Queue(next *Task) {
	t.mu.Lock()
	d := t.delegate
	t.mu.Unlock()
	if d != nil && next != nil {
		d.TaskQueue(next)
	}
}

// Cancel marks the task cancelled and forces it Done. Task kinds never
// need to override this: cancellation always just stops the clock.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.stopWakeupLocked()
	t.cancelled = true
	t.mu.Unlock()
	t.SetState(Done)
}

// SetState transitions the task to state, scheduling a wakeup timer when
// entering Sleep and notifying the delegate on any real transition.
func (t *Task) SetState(state State) {
	t.mu.Lock()
	if t.state == state {
		t.mu.Unlock()
		return
	}
	if state == Sleep && t.wakeupTimer == nil {
		if !t.scheduleWakeupLocked(0) {
			state = Done
		}
	}
	t.state = state
	d := t.delegate
	t.mu.Unlock()
	if d != nil {
		d.TaskStateChanged(t)
	}
}

// Sleep transitions the task to Sleep for secs, shortened so the wakeup
// falls no later than the deadline, or to Done if the deadline has
// already passed or the retry strategy is exhausted. secs == 0 asks the
// retry strategy for the next backoff duration.
func (t *Task) Sleep(secs time.Duration) bool {
	ok := t.scheduleWakeup(secs)
	if ok {
		t.SetState(Sleep)
	} else {
		t.SetState(Done)
	}
	return ok
}

// Retry is Sleep(0): fall back to the task's retry strategy.
func (t *Task) Retry() bool { return t.Sleep(0) }

func (t *Task) scheduleWakeup(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scheduleWakeupLocked(d)
}

func (t *Task) scheduleWakeupLocked(d time.Duration) bool {
	now := time.Now()
	t.stopWakeupLocked()

	if d <= 0 {
		next, ok := t.retryTimer.NextSleep(now)
		if !ok {
			return false
		}
		d = next
	}
	if !now.Before(t.deadline) {
		return false
	}
	if maxDelay := t.deadline.Sub(now); d > maxDelay {
		d = maxDelay
	}

	t.wakeupTime = now.Add(d)
	t.wakeupTimer = time.AfterFunc(d, func() {
		t.mu.Lock()
		t.wakeupTimer = nil
		t.mu.Unlock()
		t.SetState(Ready)
	})
	return true
}

func (t *Task) stopWakeupLocked() {
	if t.wakeupTimer != nil {
		t.wakeupTimer.Stop()
		t.wakeupTimer = nil
	}
}
