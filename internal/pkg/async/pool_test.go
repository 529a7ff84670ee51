package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecute(t *testing.T) {
	pool := NewPool(2)
	boom := errors.New("boom")

	results := pool.Execute(context.Background(), []Task{
		{Name: "one", Execute: func(ctx context.Context) (interface{}, error) { return 1, nil }},
		{Name: "two", Execute: func(ctx context.Context) (interface{}, error) { return 2, nil }},
		{Name: "fails", Execute: func(ctx context.Context) (interface{}, error) { return nil, boom }},
	})

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["one"].Data)
	assert.Equal(t, 2, results["two"].Data)
	assert.NoError(t, results["one"].Err)
	assert.ErrorIs(t, results["fails"].Err, boom)
}

func TestPoolRunsTasksConcurrently(t *testing.T) {
	pool := NewPool(2)
	var running, peak int32
	release := make(chan struct{})

	task := func(ctx context.Context) (interface{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		return nil, nil
	}

	go func() {
		assert.Eventually(t, func() bool { return atomic.LoadInt32(&peak) == 2 }, time.Second, 5*time.Millisecond)
		close(release)
	}()

	results := pool.Execute(context.Background(), []Task{{Name: "a", Execute: task}, {Name: "b", Execute: task}})
	assert.Len(t, results, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestPoolReportsCancelledTasks(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := pool.Execute(ctx, []Task{
		{Name: "slow", Execute: func(ctx context.Context) (interface{}, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}},
		{Name: "never", Execute: func(ctx context.Context) (interface{}, error) { return "ran", nil }},
	})

	require.Len(t, results, 2)
	assert.ErrorIs(t, results["slow"].Err, context.DeadlineExceeded)
	assert.ErrorIs(t, results["never"].Err, context.DeadlineExceeded)
}

func TestPoolWithNoTasks(t *testing.T) {
	assert.Empty(t, NewPool(4).Execute(context.Background(), nil))
}
