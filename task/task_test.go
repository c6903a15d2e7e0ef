package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemomobile/mms-engine-sub000/bearer"
)

type fakeBehavior struct {
	runFn                func(t *Task)
	transmitFn           func(t *Task, conn *bearer.Connection)
	networkUnavailableFn func(t *Task)
}

func (f *fakeBehavior) Run(t *Task) {
	if f.runFn != nil {
		f.runFn(t)
		return
	}
	t.SetState(Done)
}

func (f *fakeBehavior) Transmit(t *Task, conn *bearer.Connection) {
	if f.transmitFn != nil {
		f.transmitFn(t, conn)
		return
	}
	t.SetState(Done)
}

func (f *fakeBehavior) NetworkUnavailable(t *Task) {
	if f.networkUnavailableFn != nil {
		f.networkUnavailableFn(t)
		return
	}
	t.SetState(Done)
}

type fakeDelegate struct {
	queued  []*Task
	changed int
}

func (d *fakeDelegate) TaskQueue(t *Task)        { d.queued = append(d.queued, t) }
func (d *fakeDelegate) TaskStateChanged(t *Task) { d.changed++ }

func TestNewIsReady(t *testing.T) {
	tk := New("notification", "abc123", "imsi", nil, &fakeBehavior{}, 0)
	assert.Equal(t, Ready, tk.State())
	assert.Equal(t, "notification[abc123]", tk.Name)
}

func TestRunTransitionsToDone(t *testing.T) {
	tk := New("decode", "", "imsi", nil, &fakeBehavior{}, 0)
	d := &fakeDelegate{}
	tk.SetDelegate(d)
	tk.Run()
	assert.Equal(t, Done, tk.State())
	assert.Equal(t, 1, d.changed)
}

func TestRunPanicsIfNotReady(t *testing.T) {
	tk := New("decode", "", "imsi", nil, &fakeBehavior{}, 0)
	tk.SetState(Working)
	assert.Panics(t, func() { tk.Run() })
}

func TestTransmitRequiresConnectionState(t *testing.T) {
	tk := New("send", "", "imsi", nil, &fakeBehavior{}, 0)
	assert.Panics(t, func() { tk.Transmit(nil) })

	tk.SetState(NeedConnection)
	assert.NotPanics(t, func() { tk.Transmit(bearer.NewConnection("imsi", "", "", "")) })
	assert.Equal(t, Done, tk.State())
}

func TestNetworkUnavailableNoopWhenDone(t *testing.T) {
	tk := New("send", "", "imsi", nil, &fakeBehavior{}, 0)
	tk.SetState(Done)
	assert.NotPanics(t, func() { tk.NetworkUnavailable() })
	assert.Equal(t, Done, tk.State())
}

func TestSleepSchedulesWakeupAndRetry(t *testing.T) {
	tk := New("retrieve", "", "imsi", nil, &fakeBehavior{}, time.Hour)
	ok := tk.Sleep(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, Sleep, tk.State())

	assert.Eventually(t, func() bool {
		return tk.State() == Ready
	}, time.Second, 5*time.Millisecond)
}

func TestSleepPastDeadlineGoesDone(t *testing.T) {
	tk := New("retrieve", "", "imsi", nil, &fakeBehavior{}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	ok := tk.Sleep(time.Hour)
	assert.False(t, ok)
	assert.Equal(t, Done, tk.State())
}

func TestCancelStopsWakeupAndMarksCancelled(t *testing.T) {
	tk := New("retrieve", "", "imsi", nil, &fakeBehavior{}, time.Hour)
	tk.Sleep(time.Hour)
	tk.Cancel()
	assert.True(t, tk.Cancelled())
	assert.Equal(t, Done, tk.State())
}

func TestStateStringNames(t *testing.T) {
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "need_connection", NeedConnection.String())
	assert.Equal(t, "need_user_connection", NeedUserConnection.String())
	assert.Equal(t, "transmitting", Transmitting.String())
	assert.Equal(t, "working", Working.String())
	assert.Equal(t, "sleep", Sleep.String())
	assert.Equal(t, "done", Done.String())
}
