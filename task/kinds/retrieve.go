package kinds

import (
	"context"
	"time"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/httptask"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// retrieveStep GETs the Retrieve.conf a Notification.ind pointed at,
// grounded on mms_task_retrieve.c.
type retrieveStep struct {
	id            string
	location      string
	transactionID string
	h             handler.Handler
	sp            settings.Provider
	baseDir       string
	log           logging.Logger
}

// NewRetrieve builds the task that downloads the message ni notified,
// with a lifetime clamped to the notification's expiry the way
// mms_task_retrieve_new clamps task->deadline to pdu->ni.expiry.
func NewRetrieve(id, imsi string, ni *mmspdu.NotificationInd, sp settings.Provider, h handler.Handler, baseDir string, log logging.Logger) *task.Task {
	if log == nil {
		log = logging.Discard
	}
	step := &retrieveStep{id: id, location: ni.ContentLocation, transactionID: ni.TransactionID, h: h, sp: sp, baseDir: baseDir, log: log}
	lifetime := time.Until(expiryDeadline(ni.ExpirySeconds, ni.ExpiryAbsolute))
	b := newHTTPBehavior(step, sp, imsi, log)
	return task.New("retrieve", id, imsi, h, b, lifetime)
}

func (s *retrieveStep) request() (string, []byte) { return s.location, nil }

func (s *retrieveStep) started(t *task.Task) {
	s.h.MessageReceiveStateChanged(context.Background(), s.id, handler.Receiving)
}

func (s *retrieveStep) paused(t *task.Task) {
	s.h.MessageReceiveStateChanged(context.Background(), s.id, handler.Deferred)
}

func (s *retrieveStep) failed(t *task.Task, status int) {
	s.h.MessageReceiveStateChanged(context.Background(), s.id, handler.DownloadError)
}

func (s *retrieveStep) done(t *task.Task, data []byte) {
	d := dir{Root: s.baseDir}
	if _, err := httptask.SaveToFile(d.messageDir(s.id), "Retrieve.conf", data); err != nil {
		s.log.Warn("retrieve[%s]: save failed: %v", s.id, err)
	}
	s.h.MessageReceiveStateChanged(context.Background(), s.id, handler.Decoding)
	t.Queue(NewDecode(s.id, t.IMSI, s.transactionID, data, s.sp, s.h, s.baseDir, s.log))
}
