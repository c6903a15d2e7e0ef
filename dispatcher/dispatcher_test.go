package dispatcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/attachment"
	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/config"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/task/kinds"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

type fakeHandler struct {
	mu       sync.Mutex
	notifyID string
	notifyErr error
	received  []handler.Record
	receivedOK bool
	sendStates []handler.SendState
}

func (h *fakeHandler) MessageNotify(ctx context.Context, imsi, from, subject string, expiry int64, raw []byte) (string, error) {
	return h.notifyID, h.notifyErr
}
func (h *fakeHandler) MessageReceived(ctx context.Context, rec handler.Record) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, rec)
	return h.receivedOK, nil
}
func (h *fakeHandler) MessageReceiveStateChanged(ctx context.Context, id string, state handler.ReceiveState) {
}
func (h *fakeHandler) MessageSendStateChanged(ctx context.Context, id string, state handler.SendState, details string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendStates = append(h.sendStates, state)
}
func (h *fakeHandler) MessageSent(ctx context.Context, id, msgid string)                             {}
func (h *fakeHandler) DeliveryReport(ctx context.Context, imsi, msgid, recipient, status string)     {}
func (h *fakeHandler) ReadReport(ctx context.Context, imsi, msgid, recipient, status string)         {}
func (h *fakeHandler) ReadReportSendStatus(ctx context.Context, id string, status handler.ReadReportStatus) {
}

// fakeManager opens an immediately-Open connection pointed at mmscURL
// for every request, unless denied is set, in which case it declines
// (returns nil, nil), mirroring a bearer manager that can't bring up a
// data context.
type fakeManager struct {
	mu      sync.Mutex
	denied  bool
	mmscURL string
	opened  []string
	closed  []string
}

func (m *fakeManager) Open(ctx context.Context, imsi string) (*bearer.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.denied {
		return nil, nil
	}
	m.opened = append(m.opened, imsi)
	conn := bearer.NewConnection(imsi, m.mmscURL, "", "")
	conn.MarkOpen()
	return conn, nil
}

func (m *fakeManager) Close(ctx context.Context, conn *bearer.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, conn.IMSI)
	conn.MarkClosed()
	return nil
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not met before deadline")
}

func newTestDispatcher(t *testing.T, h handler.Handler, cm bearer.Manager) *Dispatcher {
	t.Helper()
	cfg := config.Config{DataDir: t.TempDir(), IdleTimeout: 50 * time.Millisecond}
	d := New(cfg, cm, h, nil, logging.Discard)
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	return d
}

func TestHandlePushAcceptedDrainsToIdleAndNotifiesDone(t *testing.T) {
	// A Delivery.ind needs no connection and no handler-assigned id, so
	// the notification task reaches Done on the very first pass,
	// letting this test exercise the idle-notification path without
	// depending on retry-backoff timing.
	di := &mmspdu.DeliveryInd{
		MessageID: "mmsc-msg-1",
		To:        "+15559990000/TYPE=PLMN",
		Status:    wsp.DeliveryStatusRetrieved,
	}
	raw, err := di.Encode()
	require.NoError(t, err)

	h := &fakeHandler{}
	cm := &fakeManager{}
	d := newTestDispatcher(t, h, cm)

	done := make(chan struct{}, 1)
	d.SetDelegate(doneFunc(func(*Dispatcher) { done <- struct{}{} }))

	require.NoError(t, d.HandlePush("imsi1", raw, ""))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher never reported idle")
	}
	assert.False(t, d.IsActive())
}

func TestSendMessageOpensConnectionAndClosesOnIdle(t *testing.T) {
	conf := &mmspdu.SendConf{
		TransactionID:  "tx-1",
		Version:        mmspdu.DefaultVersion,
		ResponseStatus: wsp.ResponseStatusOK,
		MessageID:      "mmsc-msg-1",
	}
	confBytes, err := conf.Encode()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(confBytes)
	}))
	defer srv.Close()

	h := &fakeHandler{}
	cm := &fakeManager{mmscURL: srv.URL}
	d := newTestDispatcher(t, h, cm)

	msg := kinds.OutgoingMessage{To: []string{"+15559990000/TYPE=PLMN"}}
	d.SendMessage("msg1", "imsi1", msg)

	waitUntil(t, 2*time.Second, func() bool {
		cm.mu.Lock()
		defer cm.mu.Unlock()
		return len(cm.opened) > 0
	})

	waitUntil(t, 2*time.Second, func() bool {
		cm.mu.Lock()
		defer cm.mu.Unlock()
		return len(cm.closed) > 0
	})
	waitUntil(t, 2*time.Second, func() bool { return !d.IsActive() })
}

func TestSendMessageCleansUpMessageDirOnceChainFinishes(t *testing.T) {
	conf := &mmspdu.SendConf{
		TransactionID:  "tx-1",
		Version:        mmspdu.DefaultVersion,
		ResponseStatus: wsp.ResponseStatusOK,
		MessageID:      "mmsc-msg-1",
	}
	confBytes, err := conf.Encode()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(confBytes)
	}))
	defer srv.Close()

	h := &fakeHandler{}
	cm := &fakeManager{mmscURL: srv.URL}
	root := t.TempDir()
	cfg := config.Config{DataDir: root, IdleTimeout: 50 * time.Millisecond}
	d := New(cfg, cm, h, nil, logging.Discard)
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)

	msg := kinds.OutgoingMessage{
		To:    []string{"+15559990000/TYPE=PLMN"},
		Parts: []attachment.Part{{ContentType: "text/plain", Data: []byte("hi")}},
	}
	d.SendMessage("msg1", "imsi1", msg)

	msgDir := kinds.MessageDir(root, "msg1")
	waitUntil(t, 2*time.Second, func() bool {
		_, err := os.Stat(msgDir)
		return err == nil
	})
	waitUntil(t, 2*time.Second, func() bool { return !d.IsActive() })
	waitUntil(t, 2*time.Second, func() bool {
		_, err := os.Stat(msgDir)
		return os.IsNotExist(err)
	})
}

func TestCancelStopsQueuedWork(t *testing.T) {
	h := &fakeHandler{}
	cm := &fakeManager{denied: true}
	d := newTestDispatcher(t, h, cm)

	msg := kinds.OutgoingMessage{To: []string{"+15559990000/TYPE=PLMN"}}
	d.SendMessage("msg1", "imsi1", msg)

	waitUntil(t, time.Second, func() bool { return d.IsActive() })
	d.Cancel("msg1")

	waitUntil(t, 2*time.Second, func() bool { return !d.IsActive() })
}

type doneFunc func(*Dispatcher)

func (f doneFunc) DispatcherDone(d *Dispatcher) { f(d) }
