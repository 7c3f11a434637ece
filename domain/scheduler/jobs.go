package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/jobber-dev/jobber/domain/jobs"
	"github.com/jobber-dev/jobber/internal/config"
)

// Executor runs a job by name. *jobs.Service implements it.
type Executor interface {
	Execute(ctx context.Context, name string) (jobs.Descriptor, error)
}

// Lookup checks that a job name is registered.
type Lookup interface {
	Lookup(name string) (jobs.Descriptor, bool)
}

// JobTask executes the named job through the engine.
func JobTask(exec Executor, name string) TaskFunc {
	return func(ctx context.Context) error {
		_, err := exec.Execute(ctx, name)
		return err
	}
}

// ScheduleJobs adds one task per entry of schedules, keyed by the job's
// registered name. Unknown jobs and bad expressions are configuration errors,
// and leave none of the entries scheduled.
func ScheduleJobs(s *Scheduler, exec Executor, registry Lookup, schedules map[string]string) error {
	names := make([]string, 0, len(schedules))
	for name := range schedules {
		names = append(names, name)
	}
	sort.Strings(names)

	var added []string
	rollback := func(err error) error {
		for _, name := range added {
			s.RemoveTask(name)
		}
		return err
	}

	for _, name := range names {
		spec := schedules[name]
		d, ok := registry.Lookup(name)
		if !ok {
			return rollback(&config.Error{Key: "JOB_SCHEDULES", Reason: fmt.Sprintf("names unknown job %q", name)})
		}
		if err := s.AddCronTask(d.Name, spec, JobTask(exec, d.Name)); err != nil {
			return rollback(&config.Error{Key: "JOB_SCHEDULES", Reason: fmt.Sprintf("has invalid schedule %q for %s: %v", spec, d.Name, err)})
		}
		added = append(added, d.Name)
	}
	return nil
}
