package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobber-dev/jobber/domain/jobs"
	"github.com/jobber-dev/jobber/internal/config"
)

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func taskNames(s *Scheduler) []string {
	var names []string
	for _, info := range s.GetTaskInfo() {
		names = append(names, info.Name)
	}
	return names
}

type fakeEngine struct {
	known    map[string]string
	executed []string
	err      error
}

func (f *fakeEngine) Lookup(name string) (jobs.Descriptor, bool) {
	canonical, ok := f.known[name]
	return jobs.Descriptor{Name: canonical}, ok
}

func (f *fakeEngine) Execute(_ context.Context, name string) (jobs.Descriptor, error) {
	f.executed = append(f.executed, name)
	return jobs.Descriptor{Name: name}, f.err
}

func TestNewScheduler(t *testing.T) {
	s := newTestScheduler()

	assert.False(t, s.IsRunning())
	assert.Empty(t, s.GetTaskInfo())
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler()
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_AddCronTask(t *testing.T) {
	s := newTestScheduler()
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddCronTask("b", "@every 1h", noop))
	require.NoError(t, s.AddCronTask("a", "0 */5 * * * *", noop))
	require.NoError(t, s.AddCronTask("c", "*/5 * * * *", noop))
	require.NoError(t, s.AddCronTask("a", "@daily", noop))
	assert.Error(t, s.AddCronTask("bad", "every hour", noop))

	assert.Equal(t, []string{"a", "b", "c"}, taskNames(s))

	info := s.GetTaskInfo()
	require.Len(t, info, 3)
	assert.Equal(t, "a", info[0].Name)
	assert.True(t, info[1].NextRun.After(time.Now()))

	s.RemoveTask("b")
	assert.Equal(t, []string{"a", "c"}, taskNames(s))
}

func TestScheduleJobs(t *testing.T) {
	engine := &fakeEngine{known: map[string]string{"Fibonacci": "Fibonacci", "fibonacci": "Fibonacci"}}

	t.Run("schedules under the registered name", func(t *testing.T) {
		s := newTestScheduler()
		err := ScheduleJobs(s, engine, engine, map[string]string{"fibonacci": "@every 1h"})

		require.NoError(t, err)
		assert.Equal(t, []string{"Fibonacci"}, taskNames(s))
	})

	t.Run("unknown job", func(t *testing.T) {
		err := ScheduleJobs(newTestScheduler(), engine, engine, map[string]string{"Nope": "@every 1h"})

		var cfgErr *config.Error
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "JOB_SCHEDULES", cfgErr.Key)
	})

	t.Run("bad expression", func(t *testing.T) {
		err := ScheduleJobs(newTestScheduler(), engine, engine, map[string]string{"Fibonacci": "sometimes"})

		var cfgErr *config.Error
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("failure leaves nothing scheduled", func(t *testing.T) {
		s := newTestScheduler()
		err := ScheduleJobs(s, engine, engine, map[string]string{
			"Fibonacci": "@every 1h",
			"Nope":      "@every 1h",
		})

		require.Error(t, err)
		assert.Empty(t, s.GetTaskInfo())
	})
}

func TestSchedulerCheck(t *testing.T) {
	ctx := context.Background()
	enabled := &config.Config{Scheduler: config.SchedulerConfig{Schedules: map[string]string{"Fibonacci": "@every 1h"}}}

	s := newTestScheduler()
	check := schedulerCheck(s, enabled)
	assert.Equal(t, "scheduler", check.Name)
	assert.ErrorIs(t, check.Probe(ctx), errNotRunning)

	require.NoError(t, s.Start(ctx))
	assert.NoError(t, check.Probe(ctx))

	require.NoError(t, s.Stop(ctx))
	assert.ErrorIs(t, check.Probe(ctx), errNotRunning)

	assert.NoError(t, schedulerCheck(newTestScheduler(), &config.Config{}).Probe(ctx))
}

func TestJobTask(t *testing.T) {
	engine := &fakeEngine{}
	s := newTestScheduler()

	s.runTask("Fibonacci", JobTask(engine, "Fibonacci"))
	assert.Equal(t, []string{"Fibonacci"}, engine.executed)

	engine.err = errors.New("broker down")
	err := JobTask(engine, "Fibonacci")(context.Background())
	assert.EqualError(t, err, "broker down")

	// failures are logged, never panic
	s.runTask("Fibonacci", JobTask(engine, "Fibonacci"))
	assert.Len(t, engine.executed, 3)
}
