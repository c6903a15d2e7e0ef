// Package dispatcher implements the engine's task scheduler (§4.5): a
// task queue, a pick-next-ready algorithm that multiplexes every task
// needing network access over a single bearer connection, and an idle
// timer that releases the bearer once nothing needs it.
//
// Grounded on mms_dispatcher.c's mms_dispatcher_pick_next_task and
// mms_dispatcher_run. The GLib main-loop idle/timeout callback chain is
// replaced with a tomb.Tomb-supervised loop goroutine woken by a kick
// channel, following the supervision pattern canonical-snapd uses for
// its own long-running loops.
package dispatcher

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/tomb.v2"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/config"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/task/kinds"
)

// Delegate is notified when the dispatcher falls idle: no connection
// open, no active task, and an empty queue.
type Delegate interface {
	DispatcherDone(d *Dispatcher)
}

// Dispatcher owns the task queue, at most one bearer connection, and an
// idle timer. One Dispatcher exists per running engine process.
type Dispatcher struct {
	rootDir     string
	idleTimeout time.Duration
	keepTemp    bool
	cm          bearer.Manager
	handler     handler.Handler
	sp          settings.Provider
	log         logging.Logger

	mu         sync.Mutex
	tasks      []*task.Task
	active     *task.Task
	conn       *bearer.Connection
	idleTimer  *time.Timer
	delegate   Delegate

	tb   tomb.Tomb
	kick chan struct{}
}

// New creates a dispatcher. Start must be called before it processes
// anything.
func New(cfg config.Config, cm bearer.Manager, h handler.Handler, sp settings.Provider, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = 30 * time.Second
	}
	return &Dispatcher{
		rootDir:     cfg.DataDir,
		idleTimeout: idle,
		keepTemp:    cfg.KeepTemp,
		cm:          cm,
		handler:     h,
		sp:          sp,
		log:         log,
		kick:        make(chan struct{}, 1),
	}
}

// SetDelegate attaches the observer notified when the dispatcher falls
// idle. One delegate per dispatcher, like task.Task.SetDelegate.
func (d *Dispatcher) SetDelegate(delegate Delegate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delegate = delegate
}

// Start creates the root message directory and, if any task is already
// queued, kicks off processing. Failure to create the root directory is
// a fatal start error, matching the C original.
func (d *Dispatcher) Start() error {
	if err := os.MkdirAll(d.rootDir, 0755); err != nil {
		return fmt.Errorf("dispatcher: create %s: %w", d.rootDir, err)
	}
	d.mu.Lock()
	hasWork := len(d.tasks) > 0
	d.mu.Unlock()

	d.tb.Go(func() error {
		d.loop()
		return nil
	})
	if hasWork {
		d.scheduleRun()
	}
	return nil
}

// Stop cancels every task, closes the connection, and tears down the
// loop goroutine. It blocks until the loop has exited.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	tasks := append([]*task.Task(nil), d.tasks...)
	active := d.active
	d.tasks = nil
	d.stopIdleTimerLocked()
	d.mu.Unlock()

	for _, t := range tasks {
		t.SetDelegate(nil)
		t.Cancel()
	}
	if active != nil {
		active.Cancel()
	}
	d.closeConnection()

	d.tb.Kill(nil)
	_ = d.tb.Wait()
}

func (d *Dispatcher) loop() {
	for {
		select {
		case <-d.tb.Dying():
			return
		case <-d.kick:
			d.runOnce()
		}
	}
}

// scheduleRun wakes the loop goroutine, coalescing a burst of callbacks
// into a single pass, like mms_dispatcher_next_run_schedule's reuse of
// next_run_id.
func (d *Dispatcher) scheduleRun() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// HandlePush decodes a WAP-pushed PDU and queues a Notification task
// for it, mirroring mms_dispatcher_handle_push.
func (d *Dispatcher) HandlePush(imsi string, push []byte, atticDir string) error {
	t, err := kinds.NewNotification(imsi, push, d.sp, d.handler, atticDir, d.log)
	if err != nil {
		return err
	}
	d.enqueueNew(t)
	return nil
}

// ReceiveMessage is the manual-download counterpart to HandlePush: the
// caller already knows the database id and supplies the raw
// M-Notification.ind bytes, which are decoded here, mirroring
// mms_dispatcher_receive_message.
func (d *Dispatcher) ReceiveMessage(id, imsi string, push []byte) error {
	ni, err := mmspdu.DecodeNotificationInd(push)
	if err != nil {
		return fmt.Errorf("dispatcher: decode push: %w", err)
	}
	t := kinds.NewRetrieve(id, imsi, ni, d.sp, d.handler, d.rootDir, d.log)
	d.enqueueNew(t)
	return nil
}

// SendMessage queues an Encode task for an outgoing message, mirroring
// mms_dispatcher.send_message.
func (d *Dispatcher) SendMessage(id, imsi string, msg kinds.OutgoingMessage) {
	t := kinds.NewEncode(id, imsi, msg, d.sp, d.handler, d.rootDir, d.log)
	d.enqueueNew(t)
}

// SendReadReport queues a ReadReport task, mirroring
// mms_dispatcher_send_read_report.
func (d *Dispatcher) SendReadReport(id, imsi, messageID, to string, deleted bool) {
	t := kinds.NewRead(id, imsi, messageID, to, deleted, d.sp, d.handler, d.log)
	d.enqueueNew(t)
}

// Cancel marks every task matching id (or every task, if id is empty)
// cancelled. Cancellation takes effect through each task's own Cancel
// handler, which is synchronous but safe to call from any state.
func (d *Dispatcher) Cancel(id string) {
	d.mu.Lock()
	matches := make([]*task.Task, 0, len(d.tasks))
	for _, t := range d.tasks {
		if id == "" || t.ID == id {
			matches = append(matches, t)
		}
	}
	active := d.active
	d.mu.Unlock()

	for _, t := range matches {
		t.Cancel()
	}
	if active != nil && (id == "" || active.ID == id) {
		active.Cancel()
	}
}

// IsActive reports whether the dispatcher has a connection open, a task
// running, or anything queued.
func (d *Dispatcher) IsActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isActiveLocked()
}

func (d *Dispatcher) isActiveLocked() bool {
	return d.conn != nil || d.active != nil || len(d.tasks) > 0
}

func (d *Dispatcher) enqueueNew(t *task.Task) {
	t.SetDelegate(d)
	d.mu.Lock()
	d.tasks = append(d.tasks, t)
	active := d.active != nil
	d.mu.Unlock()
	if !active {
		d.scheduleRun()
	}
}

// TaskQueue implements task.Delegate: a running task submitted a
// follow-up task (e.g. Notification queuing a Retrieve).
func (d *Dispatcher) TaskQueue(t *task.Task) {
	d.enqueueNew(t)
}

// TaskStateChanged implements task.Delegate.
func (d *Dispatcher) TaskStateChanged(t *task.Task) {
	d.mu.Lock()
	active := d.active != nil
	d.mu.Unlock()
	if !active {
		d.scheduleRun()
	}
}

// runOnce drains the queue to a fixpoint: run every task that can make
// progress right now, then settle the idle timer and notify the
// delegate if nothing is left to do.
func (d *Dispatcher) runOnce() {
	for {
		t := d.pickNext()
		if t == nil {
			break
		}

		d.mu.Lock()
		d.active = t
		d.mu.Unlock()

		switch t.State() {
		case task.Ready:
			t.Run()
		case task.NeedConnection, task.NeedUserConnection:
			if conn := d.currentConn(); conn != nil && conn.State() == bearer.Open {
				t.Transmit(conn)
			}
		}

		d.mu.Lock()
		d.active = nil
		cleanup := false
		if t.State() != task.Done {
			d.tasks = append(d.tasks, t)
		} else {
			cleanup = d.shouldCleanupLocked(t)
		}
		d.mu.Unlock()
		if cleanup {
			d.cleanupMessageDir(t.ID)
		}
	}
	d.settleIdleTimer()
	d.notifyIfIdle()
}

// shouldCleanupLocked reports whether the just-finished task t's working
// directory can be removed: keep-temp is off, the task has an id, and no
// other queued task (a follow-up in the same id's chain, e.g.
// Retrieve->Decode->{Ack,Publish}) still shares it.
func (d *Dispatcher) shouldCleanupLocked(t *task.Task) bool {
	if d.keepTemp || t.ID == "" {
		return false
	}
	for _, other := range d.tasks {
		if other.ID == t.ID {
			return false
		}
	}
	return true
}

// cleanupMessageDir removes a finished task's working directory (§5: "the
// msg directory is removed on Done unless keep-temp is set").
func (d *Dispatcher) cleanupMessageDir(id string) {
	path := kinds.MessageDir(d.rootDir, id)
	if err := os.RemoveAll(path); err != nil {
		d.log.Warn("dispatcher: remove %s: %v", path, err)
	}
}

func (d *Dispatcher) currentConn() *bearer.Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn
}

// pickNext implements mms_dispatcher_pick_next_task. It dequeues and
// returns the next task that can make progress, or nil if nothing can
// run right now.
func (d *Dispatcher) pickNext() *task.Task {
	d.mu.Lock()
	conn := d.conn

	for _, t := range d.tasks {
		if t.State() == task.Transmitting {
			// Don't interfere with the task currently using the connection.
			d.mu.Unlock()
			return nil
		}
	}

	connectionInUse := false
	if conn != nil {
		for i, t := range d.tasks {
			if isConnState(t.State()) && t.IMSI == conn.IMSI {
				if conn.State() == bearer.Open {
					d.removeAtLocked(i)
					d.stopIdleTimerLocked()
					d.mu.Unlock()
					return t
				}
				connectionInUse = true
			}
		}
	}

	if connectionInUse {
		d.stopIdleTimerLocked()
		d.mu.Unlock()
	} else {
		idx := slices.IndexFunc(d.tasks, func(t *task.Task) bool { return isConnState(t.State()) })
		if idx < 0 {
			d.mu.Unlock()
		} else {
			candidate := d.tasks[idx]
			d.mu.Unlock()

			d.closeConnection()
			newConn, err := d.cm.Open(context.Background(), candidate.IMSI)
			if err != nil {
				d.log.Warn("dispatcher: open bearer for %s: %v", candidate.IMSI, err)
			}
			if newConn != nil {
				d.mu.Lock()
				d.conn = newConn
				d.removeTaskLocked(candidate)
				d.mu.Unlock()
				return candidate
			}
			candidate.NetworkUnavailable()
			return nil
		}
	}

	d.mu.Lock()
	idx := slices.IndexFunc(d.tasks, func(t *task.Task) bool {
		return t.State() == task.Ready || t.State() == task.Done
	})
	if idx < 0 {
		d.mu.Unlock()
		return nil
	}
	t := d.tasks[idx]
	d.removeAtLocked(idx)
	d.mu.Unlock()
	return t
}

func isConnState(s task.State) bool {
	return s == task.NeedConnection || s == task.NeedUserConnection
}

func (d *Dispatcher) removeAtLocked(i int) {
	d.tasks = slices.Delete(d.tasks, i, i+1)
}

func (d *Dispatcher) removeTaskLocked(target *task.Task) {
	d.tasks = slices.DeleteFunc(d.tasks, func(t *task.Task) bool { return t == target })
}

// closeConnection releases the current bearer connection, if any.
func (d *Dispatcher) closeConnection() {
	d.mu.Lock()
	conn := d.conn
	d.conn = nil
	d.stopIdleTimerLocked()
	d.mu.Unlock()
	if conn != nil {
		if err := d.cm.Close(context.Background(), conn); err != nil {
			d.log.Warn("dispatcher: close bearer: %v", err)
		}
	}
}

// settleIdleTimer starts the idle countdown when the connection exists
// but nothing is using it, and cancels it otherwise.
func (d *Dispatcher) settleIdleTimer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return
	}
	inUse := false
	for _, t := range d.tasks {
		switch t.State() {
		case task.NeedConnection, task.NeedUserConnection, task.Transmitting:
			inUse = true
		}
	}
	if inUse {
		d.stopIdleTimerLocked()
		return
	}
	if d.idleTimer == nil {
		d.log.Debug("dispatcher: network connection is idle, arming %s timeout", d.idleTimeout)
		d.idleTimer = time.AfterFunc(d.idleTimeout, d.onIdleTimeout)
	}
}

func (d *Dispatcher) onIdleTimeout() {
	d.mu.Lock()
	d.idleTimer = nil
	d.mu.Unlock()
	d.closeConnection()
	d.notifyIfIdle()
}

func (d *Dispatcher) stopIdleTimerLocked() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
}

func (d *Dispatcher) notifyIfIdle() {
	d.mu.Lock()
	idle := !d.isActiveLocked()
	delegate := d.delegate
	d.mu.Unlock()
	if idle && delegate != nil {
		delegate.DispatcherDone(d)
	}
}
