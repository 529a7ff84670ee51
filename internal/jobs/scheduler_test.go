package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagepulse/internal/jobs"
	"pagepulse/internal/testsupport"
)

type countingJob struct {
	runs  atomic.Int32
	fail  bool
	panic bool
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	if j.fail {
		return errors.New("job failed")
	}
	return nil
}

func TestSchedulerRunsRegisteredJobs(t *testing.T) {
	s := jobs.NewScheduler(testsupport.GetLogger())
	job := &countingJob{}
	s.Register(job, 5*time.Millisecond)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	stopped := job.runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, job.runs.Load())
}

func TestSchedulerSurvivesFailingJobs(t *testing.T) {
	s := jobs.NewScheduler(testsupport.GetLogger())
	failing := &countingJob{fail: true}
	panicking := &countingJob{panic: true}
	s.Register(failing, 5*time.Millisecond)
	s.Register(panicking, 5*time.Millisecond)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return failing.runs.Load() >= 2 && panicking.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerSkipsDisabledJobs(t *testing.T) {
	s := jobs.NewScheduler(testsupport.GetLogger())
	job := &countingJob{}
	s.Register(job, 0)

	require.NoError(t, s.Start())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(0), job.runs.Load())
}

type fakeCheckpointer struct {
	modes []string
	err   error
}

func (f *fakeCheckpointer) CheckpointWAL(mode string) error {
	f.modes = append(f.modes, mode)
	return f.err
}

func TestCheckpointJob(t *testing.T) {
	db := &fakeCheckpointer{}
	job := jobs.NewCheckpointJob(db, testsupport.GetLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []string{"PASSIVE"}, db.modes)

	db.err = errors.New("database is locked")
	assert.Error(t, job.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Len(t, db.modes, 2)
}
