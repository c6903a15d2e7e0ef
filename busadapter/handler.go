package busadapter

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
)

// handlerInterface is the D-Bus interface name the external
// message-store service implements, matching mms_handler_dbus.c's
// "org.nemomobile.MmsHandler".
const handlerInterface = "org.nemomobile.MmsHandler"

// DBusHandler implements handler.Handler by forwarding every call to an
// external message-store service over D-Bus: method calls that need a
// synchronous answer (MessageNotify, MessageReceived) become blocking
// D-Bus method calls, everything else becomes a one-way signal emitted
// from ObjectPath.
type DBusHandler struct {
	conn    *dbus.Conn
	busName string
	log     logging.Logger
}

// NewDBusHandler builds a handler.Handler that talks to busName over
// conn. conn is normally the same connection a Server exports its RPC
// surface on (Server.Conn), so both directions share one bus session.
func NewDBusHandler(conn *dbus.Conn, busName string, log logging.Logger) *DBusHandler {
	if log == nil {
		log = logging.Discard
	}
	return &DBusHandler{conn: conn, busName: busName, log: log}
}

func (h *DBusHandler) object() dbus.BusObject {
	return h.conn.Object(h.busName, ObjectPath)
}

// MessageNotify implements handler.Handler.
func (h *DBusHandler) MessageNotify(ctx context.Context, imsi, from, subject string, expiry int64, raw []byte) (string, error) {
	var dbID string
	call := h.object().CallWithContext(ctx, handlerInterface+".MessageNotify", 0, imsi, from, subject, expiry, raw)
	if call.Err != nil {
		return "", fmt.Errorf("busadapter: message_notify: %w", call.Err)
	}
	if err := call.Store(&dbID); err != nil {
		return "", fmt.Errorf("busadapter: message_notify: decode reply: %w", err)
	}
	return dbID, nil
}

// MessageReceived implements handler.Handler.
func (h *DBusHandler) MessageReceived(ctx context.Context, rec handler.Record) (bool, error) {
	var ok bool
	attachments := make([]Attachment, len(rec.Attachments))
	for i, a := range rec.Attachments {
		attachments[i] = Attachment{File: a.Path, ContentType: a.ContentType, ContentID: a.ContentID}
	}
	call := h.object().CallWithContext(ctx, handlerInterface+".MessageReceived", 0,
		rec.DBID, rec.IMSI, rec.From, rec.To, rec.Cc, rec.Subject, rec.Class, rec.DateUnix, attachments)
	if call.Err != nil {
		return false, fmt.Errorf("busadapter: message_received: %w", call.Err)
	}
	if err := call.Store(&ok); err != nil {
		return false, fmt.Errorf("busadapter: message_received: decode reply: %w", err)
	}
	return ok, nil
}

// MessageReceiveStateChanged implements handler.Handler.
func (h *DBusHandler) MessageReceiveStateChanged(ctx context.Context, id string, state handler.ReceiveState) {
	h.emit("MessageReceiveStateChanged", id, receiveStateName(state))
}

// MessageSendStateChanged implements handler.Handler.
func (h *DBusHandler) MessageSendStateChanged(ctx context.Context, id string, state handler.SendState, details string) {
	h.emit("MessageSendStateChanged", id, sendStateName(state), details)
}

// MessageSent implements handler.Handler.
func (h *DBusHandler) MessageSent(ctx context.Context, id, msgid string) {
	h.emit("MessageSent", id, msgid)
}

// DeliveryReport implements handler.Handler.
func (h *DBusHandler) DeliveryReport(ctx context.Context, imsi, msgid, recipient, status string) {
	h.emit("DeliveryReport", imsi, msgid, recipient, status)
}

// ReadReport implements handler.Handler.
func (h *DBusHandler) ReadReport(ctx context.Context, imsi, msgid, recipient, status string) {
	h.emit("ReadReport", imsi, msgid, recipient, status)
}

// ReadReportSendStatus implements handler.Handler.
func (h *DBusHandler) ReadReportSendStatus(ctx context.Context, id string, status handler.ReadReportStatus) {
	h.emit("ReadReportSendStatus", id, readReportStatusName(status))
}

func (h *DBusHandler) emit(signal string, args ...any) {
	if err := h.conn.Emit(ObjectPath, handlerInterface+"."+signal, args...); err != nil {
		h.log.Warn("busadapter: emit %s: %v", signal, err)
	}
}

func receiveStateName(s handler.ReceiveState) string {
	switch s {
	case handler.Receiving:
		return "Receiving"
	case handler.Deferred:
		return "Deferred"
	case handler.NoSpace:
		return "NoSpace"
	case handler.Decoding:
		return "Decoding"
	case handler.DownloadError:
		return "DownloadError"
	case handler.DecodingError:
		return "DecodingError"
	default:
		return "Unknown"
	}
}

func sendStateName(s handler.SendState) string {
	switch s {
	case handler.Encoding:
		return "Encoding"
	case handler.TooBig:
		return "TooBig"
	case handler.Sending:
		return "Sending"
	case handler.SendDeferred:
		return "Deferred"
	case handler.SendNoSpace:
		return "NoSpace"
	case handler.SendError:
		return "SendError"
	case handler.Refused:
		return "Refused"
	default:
		return "Unknown"
	}
}

func readReportStatusName(s handler.ReadReportStatus) string {
	switch s {
	case handler.ReadReportOK:
		return "Ok"
	case handler.ReadReportIOError:
		return "IoError"
	case handler.ReadReportPermanentError:
		return "PermanentError"
	default:
		return "Unknown"
	}
}
