package busadapter

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nemomobile/mms-engine-sub000/dispatcher"
	"github.com/nemomobile/mms-engine-sub000/logging"
)

// HTTPFallback exposes the same RPC surface as rpc, as JSON over HTTP,
// for platforms with no system bus to export onto (config.HTTPFallbackAddr).
type HTTPFallback struct {
	rpc    *rpc
	router *mux.Router
	srv    *http.Server
	log    logging.Logger
}

// NewHTTPFallback builds a fallback server for disp listening on addr.
func NewHTTPFallback(disp *dispatcher.Dispatcher, addr, atticDir string, log logging.Logger) *HTTPFallback {
	if log == nil {
		log = logging.Discard
	}
	h := &HTTPFallback{rpc: newRPC(disp, atticDir, log), log: log}
	h.router = mux.NewRouter()
	h.router.HandleFunc("/sendMessage", h.handleSendMessage).Methods(http.MethodPost)
	h.router.HandleFunc("/receiveMessage", h.handleReceiveMessage).Methods(http.MethodPost)
	h.router.HandleFunc("/push", h.handlePush).Methods(http.MethodPost)
	h.router.HandleFunc("/pushNotify", h.handlePushNotify).Methods(http.MethodPost)
	h.router.HandleFunc("/cancel", h.handleCancel).Methods(http.MethodPost)
	h.router.HandleFunc("/sendReadReport", h.handleSendReadReport).Methods(http.MethodPost)
	h.srv = &http.Server{Addr: addr, Handler: h.router}
	return h
}

// Start begins serving in the background. It returns once the listener
// is ready to accept connections or setup fails.
func (h *HTTPFallback) Start() error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return err
	}
	go func() {
		if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.log.Error("busadapter: http fallback serve: %v", err)
		}
	}()
	h.log.Info("busadapter: http fallback listening on %s", h.srv.Addr)
	return nil
}

// Stop shuts the fallback server down.
func (h *HTTPFallback) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}

type sendMessageRequest struct {
	DBID        string       `json:"db_id"`
	IMSI        string       `json:"imsi"`
	To          []string     `json:"to"`
	Cc          []string     `json:"cc"`
	Bcc         []string     `json:"bcc"`
	Subject     string       `json:"subject"`
	Flags       uint32       `json:"flags"`
	Attachments []Attachment `json:"attachments"`
}

func (h *HTTPFallback) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	assigned, derr := h.rpc.SendMessage(req.DBID, req.IMSI, req.To, req.Cc, req.Bcc, req.Subject, req.Flags, req.Attachments)
	if derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{"assigned_imsi": assigned})
}

type receiveMessageRequest struct {
	DBID      string `json:"db_id"`
	IMSI      string `json:"imsi"`
	Automatic bool   `json:"automatic"`
	Raw       []byte `json:"raw"`
}

func (h *HTTPFallback) handleReceiveMessage(w http.ResponseWriter, r *http.Request) {
	var req receiveMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if derr := h.rpc.ReceiveMessage(req.DBID, req.IMSI, req.Automatic, req.Raw); derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{})
}

type pushRequest struct {
	IMSI        string `json:"imsi"`
	From        string `json:"from"`
	RemoteTime  int64  `json:"remote_time"`
	LocalTime   int64  `json:"local_time"`
	DstPort     uint16 `json:"dst_port"`
	SrcPort     uint16 `json:"src_port"`
	ContentType string `json:"content_type"`
	Raw         []byte `json:"raw"`
}

func (h *HTTPFallback) handlePush(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if derr := h.rpc.Push(req.IMSI, req.From, req.RemoteTime, req.LocalTime, req.DstPort, req.SrcPort, req.ContentType, req.Raw); derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{})
}

type pushNotifyRequest struct {
	IMSI        string `json:"imsi"`
	ContentType string `json:"content_type"`
	Raw         []byte `json:"raw"`
}

func (h *HTTPFallback) handlePushNotify(w http.ResponseWriter, r *http.Request) {
	var req pushNotifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if derr := h.rpc.PushNotify(req.IMSI, req.ContentType, req.Raw); derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{})
}

type cancelRequest struct {
	DBID string `json:"db_id"`
}

func (h *HTTPFallback) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if derr := h.rpc.Cancel(req.DBID); derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{})
}

type sendReadReportRequest struct {
	DBID       string `json:"db_id"`
	IMSI       string `json:"imsi"`
	MessageID  string `json:"message_id"`
	To         string `json:"to"`
	ReadStatus uint32 `json:"read_status"`
}

func (h *HTTPFallback) handleSendReadReport(w http.ResponseWriter, r *http.Request) {
	var req sendReadReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if derr := h.rpc.SendReadReport(req.DBID, req.IMSI, req.MessageID, req.To, req.ReadStatus); derr != nil {
		writeError(w, derr)
		return
	}
	writeJSON(w, map[string]string{})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, derr error) {
	http.Error(w, derr.Error(), http.StatusInternalServerError)
}
