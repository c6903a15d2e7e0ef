package kinds

import (
	"context"
	"fmt"
	"time"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/httptask"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mmserr"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/settings"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

// notificationBehavior handles any of the three push PDU kinds the
// bus adapter may hand the engine: Notification.ind (may schedule a
// Retrieve), Delivery.ind and Read-Orig.ind (pure handler callbacks).
// Grounded on mms_task_notification.c.
type notificationBehavior struct {
	localBehavior
	pdu      *mmspdu.PDU
	raw      []byte
	settings settings.Provider
	atticDir string
	log      logging.Logger
}

// NewNotification decodes raw as a WAP push and, if recognised, builds
// the task that dispatches on its PDU kind. An unrecognised push is
// saved to atticDir (if non-empty) and reported as an error, mirroring
// mms_task_notification_new's fallback to mms_task_notification_unrecornized.
func NewNotification(imsi string, raw []byte, sp settings.Provider, h handler.Handler, atticDir string, log logging.Logger) (*task.Task, error) {
	if log == nil {
		log = logging.Discard
	}
	pdu, err := mmspdu.Decode(raw)
	if err != nil {
		saveToAttic(atticDir, raw, log)
		return nil, mmserr.New(mmserr.Decode, "kinds.NewNotification", err)
	}
	b := &notificationBehavior{pdu: pdu, raw: raw, settings: sp, atticDir: atticDir, log: log}
	return task.New("notification", "", imsi, h, b, 0), nil
}

func (b *notificationBehavior) Run(t *task.Task) {
	switch b.pdu.Kind {
	case mmspdu.KindNotificationInd:
		b.handleNotificationInd(t, b.pdu.NotificationInd)
	case mmspdu.KindDeliveryInd:
		b.handleDeliveryInd(t, b.pdu.DeliveryInd)
	case mmspdu.KindReadOrigInd:
		b.handleReadOrigInd(t, b.pdu.ReadOrigInd)
	default:
		b.log.Info("notification: ignoring push PDU kind %s", b.pdu.Kind)
		saveToAttic(b.atticDir, b.raw, b.log)
	}
	if t.State() == task.Ready {
		t.SetState(task.Done)
	}
}

func (b *notificationBehavior) handleNotificationInd(t *task.Task, ni *mmspdu.NotificationInd) {
	ctx := context.Background()
	expiry := expiryDeadline(ni.ExpirySeconds, ni.ExpiryAbsolute).Unix()
	id, err := t.Handler.MessageNotify(ctx, t.IMSI, ni.From, ni.Subject, expiry, b.raw)
	switch {
	case err == handler.ErrRejected:
		b.rejectOrRetry(t, ni)
	case err != nil:
		b.log.Warn("notification: message_notify failed: %v", err)
		b.rejectOrRetry(t, ni)
	case id == "":
		b.rejectOrRetry(t, ni)
	default:
		t.Queue(NewRetrieve(id, t.IMSI, ni, b.settings, t.Handler, b.atticDir, b.log))
	}
}

// rejectOrRetry mirrors mms_task_notification_ind's `else if
// (!mms_task_retry(task))` branch: the task itself retries until its
// retry budget is spent, only then does it tell the MMSC to give up.
func (b *notificationBehavior) rejectOrRetry(t *task.Task, ni *mmspdu.NotificationInd) {
	if t.Retry() {
		return
	}
	resp := NewNotifyResp("", t.IMSI, ni.TransactionID, wsp.DeliveryStatusRejected, b.settings, t.Handler, b.log)
	t.Queue(resp)
}

func (b *notificationBehavior) handleDeliveryInd(t *task.Task, di *mmspdu.DeliveryInd) {
	t.Handler.DeliveryReport(context.Background(), t.IMSI, di.MessageID, di.To, deliveryStatusName(di.Status))
}

func (b *notificationBehavior) handleReadOrigInd(t *task.Task, ri *mmspdu.ReadOrigInd) {
	t.Handler.ReadReport(context.Background(), t.IMSI, ri.MessageID, ri.To, readStatusName(ri.ReadStatus))
}

func deliveryStatusName(status byte) string {
	switch status {
	case wsp.DeliveryStatusExpired:
		return "expired"
	case wsp.DeliveryStatusRetrieved:
		return "retrieved"
	case wsp.DeliveryStatusRejected:
		return "rejected"
	case wsp.DeliveryStatusDeferred:
		return "deferred"
	case wsp.DeliveryStatusUnrecognised:
		return "unrecognised"
	case wsp.DeliveryStatusForwarded:
		return "forwarded"
	case wsp.DeliveryStatusUnreachable:
		return "unreachable"
	default:
		return "indeterminate"
	}
}

func readStatusName(status byte) string {
	switch status {
	case wsp.ReadStatusRead:
		return "read"
	case wsp.ReadStatusDeleted:
		return "deleted"
	default:
		return "invalid"
	}
}

func saveToAttic(atticDir string, raw []byte, log logging.Logger) {
	if atticDir == "" {
		return
	}
	name := fmt.Sprintf("unrecognized-push-%d", time.Now().UnixNano())
	if _, err := httptask.SaveToFile(atticDir, name, raw); err != nil {
		log.Warn("notification: attic save failed: %v", err)
	}
}
