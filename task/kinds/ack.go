package kinds

import (
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// ackStep POSTs an Acknowledge.ind confirming a Retrieve.conf was
// received, grounded on mms_task_ack.c. It carries no receive-state
// reporting of its own: the Retrieve task already reported the
// transfer, and Publish reports the final outcome.
type ackStep struct {
	noopStep
	id            string
	transactionID string
	reportAllowed bool
}

// NewAck builds the task that acknowledges a successfully decoded
// Retrieve.conf back to the MMSC.
func NewAck(id, imsi, transactionID string, sp settings.Provider, h handler.Handler, log logging.Logger) *task.Task {
	step := &ackStep{id: id, transactionID: transactionID, reportAllowed: true}
	if sp != nil {
		if sim, err := sp.SettingsForIMSI(imsi); err == nil {
			step.reportAllowed = sim.AllowDeliveryReports
		}
	}
	b := newHTTPBehavior(step, sp, imsi, log)
	return task.New("ack", id, imsi, h, b, 0)
}

func (s *ackStep) request() (string, []byte) {
	ind := &mmspdu.AcknowledgeInd{
		TransactionID: s.transactionID,
		Version:       mmspdu.DefaultVersion,
		ReportAllowed: s.reportAllowed,
	}
	body, err := ind.Encode()
	if err != nil {
		return "", nil
	}
	return "", body
}

func (s *ackStep) done(t *task.Task, data []byte) {}

func (s *ackStep) failed(t *task.Task, status int) {}
