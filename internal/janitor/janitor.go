package janitor

import "context"

// Client owns the background sweeps: expired stories out of the candidate set
// and idle player sessions torn down. Both schedules stop when ctx is done.
type Client interface {
	ScheduleStorySweep(ctx context.Context) error
	ScheduleSessionSweep(ctx context.Context) error
}
