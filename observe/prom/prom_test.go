package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/kirtask/structscope/debug"
)

func TestNewRegistersWithoutError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	defer m.Close()

	_, err := reg.Gather()
	require.NoError(t, err)
}

func TestObserveCountsScopeAndTaskEvents(t *testing.T) {
	debug.Enable(nil)
	defer debug.Disable()

	reg := prometheus.NewRegistry()
	m := New(reg)
	defer m.Close()

	debug.Emit(debug.Event{Kind: debug.ScopeOpened, ScopeID: 1, ScopeType: debug.ScopeSync})
	debug.Emit(debug.Event{Kind: debug.TaskRegistered, TaskID: 1, ScopeType: debug.ScopeSync})
	debug.Emit(debug.Event{
		Kind: debug.TaskUpdated, TaskID: 1, Status: "completed",
		Timing: debug.Timing{StartTime: time.Now(), EndTime: time.Now().Add(5 * time.Millisecond)},
	})
	debug.Emit(debug.Event{Kind: debug.ScopeClosed, ScopeID: 1, ScopeType: debug.ScopeSync})

	require.Equal(t, float64(1), testutil.ToFloat64(m.scopesOpened.WithLabelValues("sync")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.scopesClosed.WithLabelValues("sync")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.tasksRegistered.WithLabelValues("sync")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.tasksByStatus.WithLabelValues("completed")))
	require.Equal(t, 1, testutil.CollectAndCount(m.taskDuration))
}

func TestObserveSkipsRunningStatus(t *testing.T) {
	debug.Enable(nil)
	defer debug.Disable()

	reg := prometheus.NewRegistry()
	m := New(reg)
	defer m.Close()

	debug.Emit(debug.Event{Kind: debug.TaskUpdated, TaskID: 9, Status: "running"})
	require.Equal(t, float64(0), testutil.ToFloat64(m.tasksByStatus.WithLabelValues("running")))
}

func TestCloseUnsubscribesFromDebugStream(t *testing.T) {
	debug.Enable(nil)
	defer debug.Disable()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Close()

	debug.Emit(debug.Event{Kind: debug.ScopeOpened, ScopeID: 2, ScopeType: debug.ScopeRace})
	require.Equal(t, float64(0), testutil.ToFloat64(m.scopesOpened.WithLabelValues("race")))
}
