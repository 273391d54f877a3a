package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_builder/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalJobRunsWithRqID(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	rqIDs := make(chan string, 1)
	err = s.NewIntervalJob("refresh quotes", func(ctx context.Context) error {
		select {
		case rqIDs <- utils.GetRequestIDFromCtx(ctx):
		default:
		}
		return nil
	}, time.Hour, true)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case rqID := <-rqIDs:
		assert.NotEmpty(t, rqID)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestTaskWithRecover(t *testing.T) {
	s := &Scheduler{}
	task := s.taskWithRecover(func(ctx context.Context) error {
		panic("boom")
	}, "panicking")

	assert.NotPanics(t, func() { task(context.Background()) })
}

func TestDisabledJob(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	defer s.Stop()

	assert.NoError(t, s.NewIntervalJob("disabled", func(ctx context.Context) error { return nil }, 0, true))
}
