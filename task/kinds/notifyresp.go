package kinds

import (
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// notifyRespStep POSTs a NotifyResp.ind declining or confirming
// retrieval of a push, grounded on mms_task_notifyresp.c.
type notifyRespStep struct {
	noopStep
	id            string
	transactionID string
	status        byte
}

// NewNotifyResp builds the task that replies to a Notification.ind
// with status (one of the wsp.DeliveryStatus* values reused by
// NotifyResp.ind: Retrieved/Rejected/Deferred/Unrecognised).
func NewNotifyResp(id, imsi, transactionID string, status byte, sp settings.Provider, h handler.Handler, log logging.Logger) *task.Task {
	step := &notifyRespStep{id: id, transactionID: transactionID, status: status}
	b := newHTTPBehavior(step, sp, imsi, log)
	return task.New("notifyresp", id, imsi, h, b, 0)
}

func (s *notifyRespStep) request() (string, []byte) {
	ind := &mmspdu.NotifyRespInd{
		TransactionID: s.transactionID,
		Version:       mmspdu.DefaultVersion,
		Status:        s.status,
	}
	body, err := ind.Encode()
	if err != nil {
		return "", nil
	}
	return "", body
}

func (s *notifyRespStep) done(t *task.Task, data []byte) {}

func (s *notifyRespStep) failed(t *task.Task, status int) {}
