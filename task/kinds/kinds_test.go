package kinds

import (
	"context"
	"sync"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/settings"
)

// fakeHandler records every callback a test cares about, satisfying
// handler.Handler in full so it can stand in for the real message
// store in any kind's tests.
type fakeHandler struct {
	mu sync.Mutex

	notifyID    string
	notifyErr   error
	received    []handler.Record
	receivedOK  bool
	receivedErr error
	receiveStates []handler.ReceiveState
	sendStates    []handler.SendState
	sendDetails   []string
	sentMsgIDs    []string
	deliveryReports []string
	readReports     []string
	readReportStatuses []handler.ReadReportStatus
}

func (h *fakeHandler) MessageNotify(ctx context.Context, imsi, from, subject string, expiry int64, raw []byte) (string, error) {
	return h.notifyID, h.notifyErr
}

func (h *fakeHandler) MessageReceived(ctx context.Context, rec handler.Record) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, rec)
	return h.receivedOK, h.receivedErr
}

func (h *fakeHandler) MessageReceiveStateChanged(ctx context.Context, id string, state handler.ReceiveState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.receiveStates = append(h.receiveStates, state)
}

func (h *fakeHandler) MessageSendStateChanged(ctx context.Context, id string, state handler.SendState, details string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendStates = append(h.sendStates, state)
	h.sendDetails = append(h.sendDetails, details)
}

func (h *fakeHandler) MessageSent(ctx context.Context, id, msgid string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sentMsgIDs = append(h.sentMsgIDs, msgid)
}

func (h *fakeHandler) DeliveryReport(ctx context.Context, imsi, msgid, recipient string, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliveryReports = append(h.deliveryReports, status)
}

func (h *fakeHandler) ReadReport(ctx context.Context, imsi, msgid, recipient string, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readReports = append(h.readReports, status)
}

func (h *fakeHandler) ReadReportSendStatus(ctx context.Context, id string, status handler.ReadReportStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readReportStatuses = append(h.readReportStatuses, status)
}

func (h *fakeHandler) lastSendState() handler.SendState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sendStates[len(h.sendStates)-1]
}

// fakeSettings is a settings.Provider fixed to one SimSettings value,
// for tests that need to control MaxPduSize/MaxPixels precisely.
type fakeSettings struct {
	sim settings.SimSettings
	err error
}

func (f fakeSettings) SettingsForIMSI(imsi string) (settings.SimSettings, error) {
	return f.sim, f.err
}
