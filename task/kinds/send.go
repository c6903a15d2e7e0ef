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

// sendStep POSTs an already-encoded Send.req and decodes the MMSC's
// Send.conf, grounded on mms_task_send.c.
type sendStep struct {
	id      string
	sendReq []byte
	h       handler.Handler
	log     logging.Logger
}

// NewSend builds the task that submits sendReq (an encoded M-Send.req,
// produced by the Encode task) to the MMSC.
func NewSend(id, imsi string, sendReq []byte, sp settings.Provider, h handler.Handler, log logging.Logger) *task.Task {
	if log == nil {
		log = logging.Discard
	}
	step := &sendStep{id: id, sendReq: sendReq, h: h, log: log}
	b := newHTTPBehavior(step, sp, imsi, log)
	return task.New("send", id, imsi, h, b, 0)
}

func (s *sendStep) request() (string, []byte) { return "", s.sendReq }

func (s *sendStep) started(t *task.Task) {
	s.h.MessageSendStateChanged(context.Background(), s.id, handler.Sending, "")
}

func (s *sendStep) paused(t *task.Task) {
	s.h.MessageSendStateChanged(context.Background(), s.id, handler.SendDeferred, "")
}

func (s *sendStep) failed(t *task.Task, status int) {
	s.h.MessageSendStateChanged(context.Background(), s.id, handler.SendError, httpStatusDetail(status))
}

func (s *sendStep) done(t *task.Task, data []byte) {
	conf, err := mmspdu.DecodeSendConf(data)
	if err != nil {
		s.log.Warn("send[%s]: decode Send.conf failed: %v", s.id, err)
		s.h.MessageSendStateChanged(context.Background(), s.id, handler.SendError, "invalid MMSC response")
		return
	}
	if conf.StatusBand() != wsp.StatusBandOK {
		s.log.Warn("send[%s]: MMSC responded with status %d", s.id, conf.ResponseStatus)
		s.h.MessageSendStateChanged(context.Background(), s.id, handler.SendError, conf.ResponseText)
		return
	}
	if conf.MessageID == "" {
		s.log.Warn("send[%s]: MMSC accepted but sent no Message-Id", s.id)
		s.h.MessageSendStateChanged(context.Background(), s.id, handler.SendError, "missing Message-Id")
		return
	}
	s.h.MessageSent(context.Background(), s.id, conf.MessageID)
}
