package kinds

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/tomb.v2"

	"github.com/nemomobile/mms-engine-sub000/attachment"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/httptask"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
)

// sendReqFileName is the on-disk name for an encoded Send.req, mirroring
// MMS_SEND_REQ_FILE.
const sendReqFileName = "Send.req"

// OutgoingMessage is everything NewEncode needs to build a Send.req: the
// envelope and the parts. Unless one of the parts is already SMIL, the
// encode job synthesizes a SMIL part referencing the others; either way
// the SMIL part is sent first, the way mms_task_encode_job_encode always
// treats parts[0] as the SMIL.
type OutgoingMessage struct {
	To             []string
	Cc             []string
	Bcc            []string
	Subject        string
	DeliveryReport bool
	ReadReport     bool
	Parts          []attachment.Part
}

// encodeBehavior builds a Send.req on a worker goroutine supervised by a
// tomb, shrinking resizable (image) parts until the encoded PDU fits
// settings.SimSettings.MaxPduSize, grounded on mms_task_encode.c. It
// embeds localBehavior because the dispatcher never hands it a
// connection: the network step is the follow-up Send task.
type encodeBehavior struct {
	localBehavior
	id      string
	imsi    string
	msg     OutgoingMessage
	sp      settings.Provider
	baseDir string
	log     logging.Logger
	tb      tomb.Tomb
}

// NewEncode builds the task that turns msg into an on-disk Send.req and
// queues the Send task once it fits the subscriber's size limit.
func NewEncode(id, imsi string, msg OutgoingMessage, sp settings.Provider, h handler.Handler, baseDir string, log logging.Logger) *task.Task {
	if log == nil {
		log = logging.Discard
	}
	b := &encodeBehavior{id: id, imsi: imsi, msg: msg, sp: sp, baseDir: baseDir, log: log}
	return task.New("encode", id, imsi, h, b, 0)
}

func (b *encodeBehavior) Run(t *task.Task) {
	t.Handler.MessageSendStateChanged(context.Background(), b.id, handler.Encoding, "")
	t.SetState(task.Working)
	b.tb.Go(func() error {
		b.runJob(t)
		return nil
	})
}

// runJob mirrors mms_task_encode_job_run: encode, and while the result
// exceeds the size limit, resize the largest resizable part and
// encode again, stopping if resizing no longer shrinks anything.
func (b *encodeBehavior) runJob(t *task.Task) {
	sim, err := b.resolveSettings()
	if err != nil {
		b.log.Error("encode[%s]: settings lookup failed: %v", b.id, err)
		t.Handler.MessageSendStateChanged(context.Background(), b.id, handler.SendError, err.Error())
		t.SetState(task.Done)
		return
	}

	parts := append([]attachment.Part(nil), b.msg.Parts...)
	steps := make([]int, len(parts))

	data := b.encode(t.ID, parts)
	lastSize := len(data) + 1

	for sim.MaxPduSize > 0 && len(data) > sim.MaxPduSize && len(data) < lastSize {
		select {
		case <-b.tb.Dying():
			return
		default:
		}
		lastSize = len(data)
		if !b.resizeLargest(parts, steps, sim.MaxPixels) {
			break
		}
		data = b.encode(t.ID, parts)
	}

	if data == nil {
		t.Handler.MessageSendStateChanged(context.Background(), b.id, handler.SendError, "encoding failed")
		t.SetState(task.Done)
		return
	}

	if sim.MaxPduSize > 0 && len(data) > sim.MaxPduSize {
		b.log.Warn("encode[%s]: message still %d bytes after resizing", b.id, len(data))
		t.Handler.MessageSendStateChanged(context.Background(), b.id, handler.TooBig, "")
		t.SetState(task.Done)
		return
	}

	d := dir{Root: b.baseDir}
	if _, err := httptask.SaveToFile(d.messageDir(b.id), sendReqFileName, data); err != nil {
		b.log.Warn("encode[%s]: save failed: %v", b.id, err)
	}

	if !t.Cancelled() {
		t.Queue(NewSend(b.id, b.imsi, data, b.sp, t.Handler, b.log))
	}
	t.SetState(task.Done)
}

// encode builds the full part list (SMIL first, mirroring parts[0] in
// the C original) and serializes a Send.req. Encoding errors collapse
// to a nil slice; the caller reports that as SendError and gives up.
func (b *encodeBehavior) encode(transactionID string, parts []attachment.Part) []byte {
	full := buildOutgoingParts(parts)
	req := &mmspdu.SendReq{
		TransactionID:  transactionID,
		Version:        mmspdu.DefaultVersion,
		To:             b.msg.To,
		Cc:             b.msg.Cc,
		Bcc:            b.msg.Bcc,
		Subject:        b.msg.Subject,
		DeliveryReport: b.msg.DeliveryReport,
		ReadReport:     b.msg.ReadReport,
		Parts:          toPDUParts(full),
	}
	data, err := req.Encode()
	if err != nil {
		b.log.Warn("encode[%s]: %v", b.id, err)
		return nil
	}
	return data
}

// buildOutgoingParts prepends a synthesized SMIL part that references
// every other part by content-location, unless the caller already
// supplied one, which is then moved to the front (§4.4 Encode step 2:
// auto-wrap only if no SMIL attachment is present).
func buildOutgoingParts(parts []attachment.Part) []attachment.Part {
	for i := range parts {
		if parts[i].ContentLocation == "" {
			parts[i].ContentLocation = fmt.Sprintf("part_%d", i)
		}
		if parts[i].ContentID == "" {
			parts[i].ContentID = parts[i].ContentLocation
		}
	}
	if i := smilPartIndex(parts); i >= 0 {
		out := append([]attachment.Part{parts[i]}, parts[:i]...)
		return append(out, parts[i+1:]...)
	}
	smil := attachment.Part{
		ContentID:       "smil",
		ContentLocation: "smil.xml",
		ContentType:     attachment.SMILContentType + "; charset=utf-8",
		Data:            []byte(attachment.BuildSMIL(parts)),
	}
	return append([]attachment.Part{smil}, parts...)
}

func smilPartIndex(parts []attachment.Part) int {
	for i, p := range parts {
		if strings.HasPrefix(p.ContentType, attachment.SMILContentType) {
			return i
		}
	}
	return -1
}

func toPDUParts(parts []attachment.Part) []mmspdu.Part {
	out := make([]mmspdu.Part, len(parts))
	for i, p := range parts {
		out[i] = mmspdu.Part{
			ContentType:     p.ContentType,
			ContentID:       p.ContentID,
			ContentLocation: p.ContentLocation,
			Body:            p.Data,
		}
	}
	return out
}

// resizeLargest shrinks the largest image part that hasn't yet hit its
// resize floor, mirroring mms_encode_job_resize picking the biggest
// MMS_ATTACHMENT_RESIZABLE attachment by file size.
func (b *encodeBehavior) resizeLargest(parts []attachment.Part, steps []int, maxPixels int) bool {
	largest := -1
	largestSize := 0
	for i, p := range parts {
		if !isResizable(p.ContentType) {
			continue
		}
		if len(p.Data) > largestSize {
			largestSize = len(p.Data)
			largest = i
		}
	}
	if largest < 0 {
		return false
	}
	result, ok, err := attachment.Resize(parts[largest].Data, parts[largest].ContentType, steps[largest], maxPixels)
	if err != nil || !ok {
		if err != nil {
			b.log.Warn("encode[%s]: resize %s failed: %v", b.id, parts[largest].ContentLocation, err)
		}
		return false
	}
	parts[largest].Data = result.Data
	steps[largest] = result.Step
	return true
}

func isResizable(contentType string) bool {
	return len(contentType) >= 6 && contentType[:6] == "image/"
}

func (b *encodeBehavior) resolveSettings() (settings.SimSettings, error) {
	if b.sp == nil {
		return settings.Defaults(), nil
	}
	return b.sp.SettingsForIMSI(b.imsi)
}
