package kinds

import (
	"context"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// readStep POSTs a Read-Rec.ind reporting that a retrieved message was
// read or deleted, grounded on mms_task_read.c. Unlike the other HTTP
// steps it classifies failures into IO vs permanent rather than just
// retrying, since a read report that the MMSC rejects should not be
// retried forever.
type readStep struct {
	noopStep
	id         string
	messageID  string
	to         string
	readStatus byte
}

// NewRead builds the task that reports a read (or deleted) status for
// msgID back to its sender's MMSC.
func NewRead(id, imsi, msgID, to string, deleted bool, sp settings.Provider, h handler.Handler, log logging.Logger) *task.Task {
	status := wsp.ReadStatusRead
	if deleted {
		status = wsp.ReadStatusDeleted
	}
	step := &readStep{id: id, messageID: msgID, to: to, readStatus: byte(status)}
	b := newHTTPBehavior(step, sp, imsi, log)
	return task.New("read", id, imsi, h, b, 0)
}

func (s *readStep) request() (string, []byte) {
	ind := &mmspdu.ReadRecInd{
		MessageID:  s.messageID,
		To:         s.to,
		From:       mmspdu.InsertAddress,
		ReadStatus: s.readStatus,
	}
	body, err := ind.Encode()
	if err != nil {
		return "", nil
	}
	return "", body
}

func (s *readStep) done(t *task.Task, data []byte) {
	t.Handler.ReadReportSendStatus(context.Background(), s.id, handler.ReadReportOK)
}

func (s *readStep) failed(t *task.Task, status int) {
	result := handler.ReadReportPermanentError
	if status == 0 || (status >= 500) {
		result = handler.ReadReportIOError
	}
	t.Handler.ReadReportSendStatus(context.Background(), s.id, result)
}
