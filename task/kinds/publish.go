package kinds

import (
	"context"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// publishBehavior hands a fully decoded message to the handler,
// grounded on mms_task_publish.c: if the handler isn't ready to accept
// it yet, the task sleeps and tries again rather than dropping it.
type publishBehavior struct {
	localBehavior
	rec handler.Record
	log logging.Logger
}

// NewPublish builds the task that reports rec as received.
func NewPublish(rec handler.Record, h handler.Handler, log logging.Logger) *task.Task {
	if log == nil {
		log = logging.Discard
	}
	b := &publishBehavior{rec: rec, log: log}
	return task.New("publish", rec.DBID, rec.IMSI, h, b, 0)
}

func (b *publishBehavior) Run(t *task.Task) {
	ok, err := t.Handler.MessageReceived(context.Background(), b.rec)
	if err != nil {
		b.log.Warn("publish[%s]: %v", b.rec.DBID, err)
	}
	if ok {
		t.SetState(task.Done)
		return
	}
	if !t.Retry() {
		t.SetState(task.Done)
	}
}
