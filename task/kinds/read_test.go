package kinds

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/task"
)

func TestReadReportsOKOnSuccess(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := &fakeHandler{}
	tk := NewRead("msg1", "imsi1", "msgid-9", "+15550000000", false, nil, h, nil)
	tk.Run()
	tk.Transmit(bearer.NewConnection("imsi1", srv.URL, "", ""))
	assert.Equal(t, task.Done, tk.State())
	require.Len(t, h.readReportStatuses, 1)
	assert.Equal(t, handler.ReadReportOK, h.readReportStatuses[0])

	ind, err := mmspdu.DecodeReadRecInd(gotBody)
	require.NoError(t, err)
	assert.Equal(t, "msgid-9", ind.MessageID)
	assert.Equal(t, mmspdu.InsertAddress, ind.From)
}

func TestReadReportsPermanentErrorOnRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	h := &fakeHandler{}
	tk := NewRead("msg2", "imsi1", "msgid-1", "+15550000000", true, nil, h, nil)
	tk.Run()
	tk.Transmit(bearer.NewConnection("imsi1", srv.URL, "", ""))
	assert.Equal(t, task.Done, tk.State())
	require.Len(t, h.readReportStatuses, 1)
	assert.Equal(t, handler.ReadReportPermanentError, h.readReportStatuses[0])
}
