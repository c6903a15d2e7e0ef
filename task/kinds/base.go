// Package kinds implements the nine task kinds the dispatcher schedules
// (§4.4): Notification, Retrieve, Decode, Ack, NotifyResp, Encode, Send,
// Publish, ReadReport. Each kind plugs task.Behavior into task.New,
// grounded one-for-one on the C original's mms_task_<kind>.c.
package kinds

import (
	"context"
	"fmt"
	"time"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/httptask"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmserr"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// transmitTimeout bounds a single HTTP transfer, mirroring the bearer
// manager's own timeout rather than letting a stuck socket hang forever.
const transmitTimeout = 2 * time.Minute

// localBehavior is embedded by task kinds that never need a network
// connection (Decode, Publish): Run does all the work synchronously,
// Transmit/NetworkUnavailable are unreachable but must exist to satisfy
// task.Behavior.
type localBehavior struct{}

func (localBehavior) Transmit(*task.Task, *bearer.Connection) {}
func (localBehavior) NetworkUnavailable(*task.Task)            {}

// httpStep is what a specific HTTP-backed task kind contributes to
// httpBehavior: the outgoing request, and what to do with the outcome.
type httpStep interface {
	// request returns the URI ("" = MMSC default) and body to POST, or a
	// nil body to perform a GET instead.
	request() (uri string, body []byte)
	// done is called once on a successful (2xx) transfer.
	done(t *task.Task, data []byte)
	// failed is called once the task gives up (permanent error, or the
	// retry budget is exhausted). status is 0 if no response ever arrived.
	failed(t *task.Task, status int)
	// started is called when the transfer begins (§6.3 state reporting).
	started(t *task.Task)
	// paused is called when a transport error causes a retry (§6.3).
	paused(t *task.Task)
}

// httpBehavior implements task.Behavior for any httpStep: Run asks the
// dispatcher for a connection, Transmit posts/gets and dispatches
// done/failed, NetworkUnavailable retries or gives up. This is the Go
// counterpart of MMSTaskHttp (mms_task_http.c).
type httpBehavior struct {
	step      httpStep
	settings  settings.Provider
	imsi      string
	log       logging.Logger
}

func newHTTPBehavior(step httpStep, sp settings.Provider, imsi string, log logging.Logger) httpBehavior {
	if log == nil {
		log = logging.Discard
	}
	return httpBehavior{step: step, settings: sp, imsi: imsi, log: log}
}

func (b httpBehavior) Run(t *task.Task) {
	t.SetState(task.NeedConnection)
}

func (b httpBehavior) Transmit(t *task.Task, conn *bearer.Connection) {
	t.SetState(task.Transmitting)
	b.step.started(t)

	sim, err := b.resolveSettings()
	if err != nil {
		b.log.Error("%s: settings lookup failed: %v", t.Name, err)
		b.step.failed(t, 0)
		t.SetState(task.Done)
		return
	}

	uri, body := b.step.request()
	ctx, cancel := context.WithTimeout(context.Background(), transmitTimeout)
	defer cancel()

	data, outcome, err := httptask.Post(ctx, conn, httptask.ClientOptions{
		Proxy:     conn.Proxy,
		UserAgent: sim.UserAgent,
		UAProf:    sim.UserAgentProfile,
	}, uri, body)

	if err != nil || !outcome.Successful() {
		if outcome.Retryable {
			b.step.paused(t)
			if t.Retry() {
				return
			}
		}
		b.log.Warn("%s: HTTP error %d", t.Name, outcome.StatusCode)
		b.step.failed(t, outcome.StatusCode)
		t.SetState(task.Done)
		return
	}

	b.step.done(t, data)
	t.SetState(task.Done)
}

func (b httpBehavior) NetworkUnavailable(t *task.Task) {
	b.step.paused(t)
	if t.Retry() {
		return
	}
	b.step.failed(t, 0)
}

func (b httpBehavior) resolveSettings() (settings.SimSettings, error) {
	if b.settings == nil {
		return settings.Defaults(), nil
	}
	sim, err := b.settings.SettingsForIMSI(b.imsi)
	if err != nil {
		return settings.SimSettings{}, mmserr.New(mmserr.Args, "kinds.resolveSettings", err)
	}
	return sim, nil
}

// noopStep provides started/paused no-ops for steps that don't report
// receive/send state (Ack, NotifyResp).
type noopStep struct{}

func (noopStep) started(*task.Task) {}
func (noopStep) paused(*task.Task)  {}

// dir is a small seam so tests can redirect where a kind writes its PDU
// files, mirroring mms_task_dir()/mms_message_dir().
type dir struct {
	Root string
}

// messageDir returns the per-task working directory <root>/msg/<id>
// (§3 Task, §6.4 Persisted state).
func (d dir) messageDir(id string) string {
	if d.Root == "" {
		return MessageDirName + "/" + id
	}
	return d.Root + "/" + MessageDirName + "/" + id
}

// MessageDirName is the path segment under a dispatcher's root directory
// holding every task's working directory, shared with the dispatcher's
// Done-time cleanup so both sides agree on the same layout.
const MessageDirName = "msg"

// MessageDir returns the per-task working directory for id under root,
// the same path dir.messageDir builds, exported for the dispatcher.
func MessageDir(root, id string) string {
	return dir{Root: root}.messageDir(id)
}

// expiryDeadline resolves an Expiry/Delivery-Time header's two-shape
// value to an absolute instant: an epoch second count when absolute is
// true, or a delta from now when it's a relative number of seconds
// (§4.1.6).
func expiryDeadline(seconds uint64, absolute bool) time.Time {
	if absolute {
		return time.Unix(int64(seconds), 0)
	}
	return time.Now().Add(time.Duration(seconds) * time.Second)
}

// httpStatusDetail renders a failed transfer's status code for the
// handler's human-readable detail string; 0 means no response arrived.
func httpStatusDetail(status int) string {
	if status == 0 {
		return "network error"
	}
	return fmt.Sprintf("HTTP %d", status)
}
