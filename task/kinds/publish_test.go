package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/handler"
	"github.com/nemomobile/mms-engine-sub000/task"
)

func TestPublishDoneWhenHandlerAccepts(t *testing.T) {
	h := &fakeHandler{receivedOK: true}
	rec := handler.Record{DBID: "msg1", IMSI: "imsi1"}
	tk := NewPublish(rec, h, nil)
	tk.Run()

	assert.Equal(t, task.Done, tk.State())
	require.Len(t, h.received, 1)
	assert.Equal(t, "msg1", h.received[0].DBID)
}

func TestPublishRetriesWhenHandlerDeclines(t *testing.T) {
	h := &fakeHandler{receivedOK: false}
	rec := handler.Record{DBID: "msg2", IMSI: "imsi1"}
	tk := NewPublish(rec, h, nil)
	tk.Run()

	// mms_task_publish sleeps and tries again rather than dropping the
	// message when the handler isn't ready for it yet.
	assert.Equal(t, task.Sleep, tk.State())
}
