// Package busadapter exposes the engine's RPC surface (§6.2) over D-Bus
// and reports back through the handler surface (§6.3) to an external
// message-store service, with a loopback HTTP fallback for platforms
// with no system bus. Grounded on mms_handler_dbus.c and mms_engine.c's
// method/signal names.
package busadapter

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/nemomobile/mms-engine-sub000/attachment"
	"github.com/nemomobile/mms-engine-sub000/dispatcher"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
	"github.com/nemomobile/mms-engine-sub000/mediatype"
	"github.com/nemomobile/mms-engine-sub000/task/kinds"
)

// ObjectPath is the single object every engine method and signal is
// exported/emitted on, matching the C original's fixed path.
const ObjectPath dbus.ObjectPath = "/org/nemomobile/MmsEngine"

// flag bits in sendMessage's flags argument (§6.2).
const (
	flagDeliveryReport = 1 << 0
	flagReadReport     = 1 << 1
)

// Attachment is one outgoing part named by the sendMessage RPC: a path
// to the content on disk, plus the content-type/id the caller wants it
// tagged with (either may be left empty and will be inferred/assigned).
type Attachment struct {
	File        string
	ContentType string
	ContentID   string
}

// rpc implements the exported D-Bus method surface (§6.2). It is kept
// free of any D-Bus-specific state so its methods can be unit tested as
// ordinary Go calls.
type rpc struct {
	disp     *dispatcher.Dispatcher
	atticDir string
	log      logging.Logger
}

func newRPC(disp *dispatcher.Dispatcher, atticDir string, log logging.Logger) *rpc {
	if log == nil {
		log = logging.Discard
	}
	return &rpc{disp: disp, atticDir: atticDir, log: log}
}

// SendMessage queues an outgoing message and echoes dbID back once it
// has been accepted, matching mms_engine_send_message's synchronous
// acknowledgement (the MMSC-assigned id only arrives later, through
// message_sent).
func (r *rpc) SendMessage(dbID, imsi string, to, cc, bcc []string, subject string, flags uint32, attachments []Attachment) (string, *dbus.Error) {
	parts, err := loadAttachments(attachments)
	if err != nil {
		return "", dbus.MakeFailedError(err)
	}
	msg := kinds.OutgoingMessage{
		To:             to,
		Cc:             cc,
		Bcc:            bcc,
		Subject:        subject,
		DeliveryReport: flags&flagDeliveryReport != 0,
		ReadReport:     flags&flagReadReport != 0,
		Parts:          parts,
	}
	r.disp.SendMessage(dbID, imsi, msg)
	return dbID, nil
}

// ReceiveMessage queues a deferred download for a previously-notified
// message, matching mms_dispatcher_receive_message.
func (r *rpc) ReceiveMessage(dbID, imsi string, automatic bool, raw []byte) *dbus.Error {
	if err := r.disp.ReceiveMessage(dbID, imsi, raw); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Push is the generic WAP push ingress; the content type must be the
// MMS push application type or the push is rejected outright.
func (r *rpc) Push(imsi, from string, remoteTime, localTime int64, dstPort, srcPort uint16, contentType string, raw []byte) *dbus.Error {
	mt, err := mediatype.Parse(contentType)
	if err != nil || mt.Full != mmsPushContentType {
		return dbus.MakeFailedError(fmt.Errorf("busadapter: unexpected push content-type %q", contentType))
	}
	if dstPort != wapPushPort {
		r.log.Debug("busadapter: push to port %d, expected %d", dstPort, wapPushPort)
	}
	return r.pushNotify(imsi, raw)
}

// PushNotify is the simplified push ingress used when the caller has
// already filtered out non-MMS pushes.
func (r *rpc) PushNotify(imsi, contentType string, raw []byte) *dbus.Error {
	return r.pushNotify(imsi, raw)
}

func (r *rpc) pushNotify(imsi string, raw []byte) *dbus.Error {
	if err := r.disp.HandlePush(imsi, raw, r.atticDir); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// Cancel aborts every task associated with dbID.
func (r *rpc) Cancel(dbID string) *dbus.Error {
	r.disp.Cancel(dbID)
	return nil
}

// SendReadReport posts an M-Read-Rec.ind for a previously received
// message. readStatus is 0 for Read, 1 for Deleted (wsp.ReadStatus*
// minus the continue-bit).
func (r *rpc) SendReadReport(dbID, imsi, messageID, to string, readStatus uint32) *dbus.Error {
	r.disp.SendReadReport(dbID, imsi, messageID, to, readStatus == readStatusDeleted)
	return nil
}

const readStatusDeleted = 1

const mmsPushContentType = "application/vnd.wap.mms-message"

// wapPushPort is the WAP Push application-id port (0x0B84).
const wapPushPort = 0x0B84

func loadAttachments(in []Attachment) ([]attachment.Part, error) {
	parts := make([]attachment.Part, 0, len(in))
	for _, a := range in {
		data, err := os.ReadFile(a.File)
		if err != nil {
			return nil, fmt.Errorf("busadapter: read attachment %s: %w", a.File, err)
		}
		ct := a.ContentType
		if ct == "" {
			ct = attachment.Sniff(data)
		}
		parts = append(parts, attachment.Part{
			ContentID:   a.ContentID,
			ContentType: ct,
			Data:        data,
		})
	}
	return parts, nil
}

// Server owns the D-Bus connection the engine's RPC surface is exported
// on and the handler-surface signals are emitted from.
type Server struct {
	conn     *dbus.Conn
	ownsConn bool
	busName  string
	rpc      *rpc
	log      logging.Logger
}

// NewServer builds a Server for disp. atticDir, if non-empty, is where
// unrecognised pushes get archived (§4.4's Notification task). Start
// connects to the system bus on its own.
func NewServer(disp *dispatcher.Dispatcher, busName, atticDir string, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard
	}
	return &Server{busName: busName, rpc: newRPC(disp, atticDir, log), log: log}
}

// NewServerWithConn builds a Server that exports onto an already-open
// bus connection, for callers (cmd/mms-engine) that need the same
// connection wired into a DBusHandler before the Server itself exists.
// Start will not close conn on Stop in that case; ownership stays with
// the caller.
func NewServerWithConn(conn *dbus.Conn, disp *dispatcher.Dispatcher, busName, atticDir string, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard
	}
	return &Server{conn: conn, ownsConn: false, busName: busName, rpc: newRPC(disp, atticDir, log), log: log}
}

// Start claims busName and exports the RPC surface on ObjectPath,
// connecting to the system bus first if NewServer (not NewServerWithConn)
// built this Server.
func (s *Server) Start() error {
	if s.conn == nil {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return fmt.Errorf("busadapter: connect system bus: %w", err)
		}
		s.conn = conn
		s.ownsConn = true
	}
	reply, err := s.conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("busadapter: request name %s: %w", s.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("busadapter: bus name %s already taken", s.busName)
	}
	if err := s.conn.Export(s.rpc, ObjectPath, s.busName); err != nil {
		return fmt.Errorf("busadapter: export methods: %w", err)
	}
	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: s.busName,
				Methods: []introspect.Method{
					{Name: "SendMessage"},
					{Name: "ReceiveMessage"},
					{Name: "Push"},
					{Name: "PushNotify"},
					{Name: "Cancel"},
					{Name: "SendReadReport"},
				},
			},
		},
	}
	if err := s.conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("busadapter: export introspection: %w", err)
	}
	s.log.Info("busadapter: exported %s on %s", s.busName, ObjectPath)
	return nil
}

// Stop releases the bus connection, if this Server owns it.
func (s *Server) Stop() {
	if s.conn != nil && s.ownsConn {
		s.conn.Close()
	}
	s.conn = nil
}

// Conn returns the underlying D-Bus connection, for wiring a DBusHandler
// that shares it. Nil until Start succeeds.
func (s *Server) Conn() *dbus.Conn { return s.conn }

var _ handler.Handler = (*DBusHandler)(nil)
