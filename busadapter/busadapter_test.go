package busadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/config"
	"github.com/nemomobile/mms-engine-sub000/dispatcher"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/logging"
)

type fakeHandler struct {
	mu sync.Mutex
}

func (h *fakeHandler) MessageNotify(ctx context.Context, imsi, from, subject string, expiry int64, raw []byte) (string, error) {
	return "", nil
}
func (h *fakeHandler) MessageReceived(ctx context.Context, rec handler.Record) (bool, error) {
	return true, nil
}
func (h *fakeHandler) MessageReceiveStateChanged(ctx context.Context, id string, state handler.ReceiveState) {
}
func (h *fakeHandler) MessageSendStateChanged(ctx context.Context, id string, state handler.SendState, details string) {
}
func (h *fakeHandler) MessageSent(ctx context.Context, id, msgid string)                         {}
func (h *fakeHandler) DeliveryReport(ctx context.Context, imsi, msgid, recipient, status string) {}
func (h *fakeHandler) ReadReport(ctx context.Context, imsi, msgid, recipient, status string)     {}
func (h *fakeHandler) ReadReportSendStatus(ctx context.Context, id string, status handler.ReadReportStatus) {
}

type fakeManager struct{}

func (fakeManager) Open(ctx context.Context, imsi string) (*bearer.Connection, error) {
	return nil, nil
}
func (fakeManager) Close(ctx context.Context, conn *bearer.Connection) error { return nil }

func newTestDispatcher(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()
	cfg := config.Config{DataDir: t.TempDir(), IdleTimeout: 50 * time.Millisecond}
	d := dispatcher.New(cfg, fakeManager{}, &fakeHandler{}, nil, logging.Discard)
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	return d
}

func TestLoadAttachmentsSniffsMissingContentType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	parts, err := loadAttachments([]Attachment{{File: path, ContentID: "part1"}})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "part1", parts[0].ContentID)
	assert.NotEmpty(t, parts[0].ContentType)
}

func TestLoadAttachmentsKeepsExplicitContentType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02}, 0o644))

	parts, err := loadAttachments([]Attachment{{File: path, ContentType: "application/octet-stream"}})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "application/octet-stream", parts[0].ContentType)
}

func TestLoadAttachmentsMissingFile(t *testing.T) {
	_, err := loadAttachments([]Attachment{{File: "/no/such/file"}})
	assert.Error(t, err)
}

func TestRPCPushRejectsWrongContentType(t *testing.T) {
	d := newTestDispatcher(t)
	r := newRPC(d, "", logging.Discard)

	derr := r.Push("imsi1", "+15551234567", 0, 0, 2948, 9200, "text/plain", []byte("not an mms"))
	require.NotNil(t, derr)
}

func TestRPCSendMessageEchoesDBID(t *testing.T) {
	d := newTestDispatcher(t)
	r := newRPC(d, "", logging.Discard)

	id, derr := r.SendMessage("db-1", "imsi1", []string{"+15559990000/TYPE=PLMN"}, nil, nil, "hi", 0, nil)
	require.Nil(t, derr)
	assert.Equal(t, "db-1", id)
}

func TestRPCCancelIsIdempotent(t *testing.T) {
	d := newTestDispatcher(t)
	r := newRPC(d, "", logging.Discard)

	derr := r.Cancel("no-such-id")
	assert.Nil(t, derr)
}

func TestHTTPFallbackSendMessageRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	fb := NewHTTPFallback(d, "127.0.0.1:0", "", logging.Discard)
	srv := httptest.NewServer(fb.router)
	defer srv.Close()

	body, err := json.Marshal(sendMessageRequest{
		DBID: "db-1",
		IMSI: "imsi1",
		To:   []string{"+15559990000/TYPE=PLMN"},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/sendMessage", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "db-1", out["assigned_imsi"])
}

func TestHTTPFallbackPushRejectsBadContentType(t *testing.T) {
	d := newTestDispatcher(t)
	fb := NewHTTPFallback(d, "127.0.0.1:0", "", logging.Discard)
	srv := httptest.NewServer(fb.router)
	defer srv.Close()

	body, err := json.Marshal(pushRequest{IMSI: "imsi1", ContentType: "text/plain", Raw: []byte("x")})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/push", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHTTPFallbackCancelRoundTrip(t *testing.T) {
	d := newTestDispatcher(t)
	fb := NewHTTPFallback(d, "127.0.0.1:0", "", logging.Discard)
	srv := httptest.NewServer(fb.router)
	defer srv.Close()

	body, err := json.Marshal(cancelRequest{DBID: "db-1"})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/cancel", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
