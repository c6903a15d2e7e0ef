package kinds

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

func encodedSendConf(t *testing.T, status byte, msgID string) []byte {
	t.Helper()
	conf := &mmspdu.SendConf{
		TransactionID:  "tx-1",
		Version:        mmspdu.DefaultVersion,
		ResponseStatus: status,
		MessageID:      msgID,
	}
	data, err := conf.Encode()
	require.NoError(t, err)
	return data
}

func TestSendReportsMessageSentOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(encodedSendConf(t, wsp.ResponseStatusOK, "mmsc-msg-1"))
	}))
	defer srv.Close()

	h := &fakeHandler{}
	tk := NewSend("msg1", "imsi1", []byte("send-req-bytes"), nil, h, nil)
	tk.Run()
	tk.Transmit(bearer.NewConnection("imsi1", srv.URL, "", ""))
	assert.Equal(t, task.Done, tk.State())
	require.Len(t, h.sentMsgIDs, 1)
	assert.Equal(t, "mmsc-msg-1", h.sentMsgIDs[0])
}

func TestSendReportsErrorOnMMSCRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(encodedSendConf(t, wsp.ResponseStatusPermanentErrorLo, ""))
	}))
	defer srv.Close()

	h := &fakeHandler{}
	tk := NewSend("msg2", "imsi1", []byte("send-req-bytes"), nil, h, nil)
	tk.Run()
	tk.Transmit(bearer.NewConnection("imsi1", srv.URL, "", ""))
	assert.Equal(t, task.Done, tk.State())
	assert.Empty(t, h.sentMsgIDs)
	assert.Equal(t, handler.SendError, h.lastSendState())
}
