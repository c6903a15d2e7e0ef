package kinds

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/mmspdu"
	"github.com/nemomobile/mms-engine-sub000/task"
	"github.com/nemomobile/mms-engine-sub000/wsp"
)

func TestNotifyRespPostsRejectedStatus(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := &fakeHandler{}
	tk := NewNotifyResp("msg1", "imsi1", "tx-7", wsp.DeliveryStatusRejected, nil, h, nil)
	tk.Run()
	require.Equal(t, task.NeedConnection, tk.State())

	tk.Transmit(bearer.NewConnection("imsi1", srv.URL, "", ""))
	assert.Equal(t, task.Done, tk.State())

	ind, err := mmspdu.DecodeNotifyRespInd(gotBody)
	require.NoError(t, err)
	assert.Equal(t, "tx-7", ind.TransactionID)
	assert.Equal(t, wsp.DeliveryStatusRejected, ind.Status)
}
