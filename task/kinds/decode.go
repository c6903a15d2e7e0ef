package kinds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/httptask"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// decodeBehavior parses a retrieved Retrieve.conf into a handler.Record
// and writes its parts to disk, grounded on mms_task_decode.c. It never
// needs a connection, so it embeds localBehavior.
type decodeBehavior struct {
	localBehavior
	id            string
	transactionID string
	data          []byte
	sp            settings.Provider
	baseDir       string
	log           logging.Logger
}

// NewDecode builds the task that turns a downloaded Retrieve.conf into
// a stored message, queuing Ack+Publish on success or NotifyResp on
// failure.
func NewDecode(id, imsi, transactionID string, data []byte, sp settings.Provider, h handler.Handler, baseDir string, log logging.Logger) *task.Task {
	if log == nil {
		log = logging.Discard
	}
	b := &decodeBehavior{id: id, transactionID: transactionID, data: data, sp: sp, baseDir: baseDir, log: log}
	return task.New("decode", id, imsi, h, b, 0)
}

func (b *decodeBehavior) Run(t *task.Task) {
	conf, err := mmspdu.DecodeRetrieveConf(b.data)
	if err != nil {
		b.log.Warn("decode[%s]: %v", b.id, err)
		t.Handler.MessageReceiveStateChanged(context.Background(), b.id, handler.DecodingError)
		t.Queue(NewNotifyResp(b.id, t.IMSI, b.transactionID, wsp.DeliveryStatusUnrecognised, b.sp, t.Handler, b.log))
		t.SetState(task.Done)
		return
	}

	rec, err := b.writeParts(t.IMSI, conf)
	if err != nil {
		b.log.Warn("decode[%s]: writing parts failed: %v", b.id, err)
		t.Handler.MessageReceiveStateChanged(context.Background(), b.id, handler.DecodingError)
		t.Queue(NewNotifyResp(b.id, t.IMSI, b.transactionID, wsp.DeliveryStatusUnrecognised, b.sp, t.Handler, b.log))
		t.SetState(task.Done)
		return
	}

	t.Queue(NewAck(b.id, t.IMSI, b.transactionID, b.sp, t.Handler, b.log))
	t.Queue(NewPublish(rec, t.Handler, b.log))
	t.SetState(task.Done)
}

func (b *decodeBehavior) writeParts(imsi string, conf *mmspdu.RetrieveConf) (handler.Record, error) {
	d := dir{Root: b.baseDir}
	messageDir := d.messageDir(b.id)
	partsDir := messageDir + "/parts"

	rec := handler.Record{
		DBID:     b.id,
		IMSI:     imsi,
		From:     conf.From,
		To:       conf.To,
		Cc:       conf.Cc,
		Subject:  conf.Subject,
		Class:    "personal",
		DateUnix: time.Now().Unix(),
		PartsDir: partsDir,
	}
	if conf.DateSeconds != 0 {
		rec.DateUnix = int64(conf.DateSeconds)
	}

	used := make(map[string]bool)
	for i, part := range conf.Parts {
		name := part.ContentID
		if name == "" {
			name = fmt.Sprintf("part_%d", i)
		}
		name = sanitizePartFileName(name)
		for used[name] {
			name = "_" + name
		}
		used[name] = true

		path, err := httptask.SaveToFile(partsDir, name, part.Body)
		if err != nil {
			return handler.Record{}, err
		}
		rec.Attachments = append(rec.Attachments, handler.RecordAttachment{
			Path:            path,
			ContentType:     part.ContentType,
			ContentID:       part.ContentID,
			ContentLocation: part.ContentLocation,
		})
	}
	return rec, nil
}

// sanitizePartFileName mirrors mms_task_decode_add_file_name: strip
// characters unsafe in a URI fragment, replace path separators with
// underscores.
func sanitizePartFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', '[', ']':
			continue
		case '/', '\\':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
