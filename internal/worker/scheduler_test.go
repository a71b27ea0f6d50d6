package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls atomic.Int32
	err   atomic.Value
}

func (c *counter) job(context.Context) (int, error) {
	c.calls.Add(1)
	if err, ok := c.err.Load().(error); ok {
		return 0, err
	}
	return 2, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(quietLogger())
	assert.Error(t, s.Add("booking_expiry", "not a schedule", (&counter{}).job))
}

func TestRunNowCallsJob(t *testing.T) {
	c := &counter{}
	s := NewScheduler(quietLogger())
	require.NoError(t, s.Add("booking_expiry", "@every 1h", c.job))

	assert.True(t, s.RunNow("booking_expiry"))
	c.err.Store(errors.New("db down"))
	assert.True(t, s.RunNow("booking_expiry"))
	assert.False(t, s.RunNow("unknown"))
	assert.Equal(t, int32(2), c.calls.Load())
}

func TestSchedulerRunsOnSchedule(t *testing.T) {
	expiry, purge := &counter{}, &counter{}
	s := NewScheduler(quietLogger())
	require.NoError(t, s.Add("booking_expiry", "@every 1s", expiry.job))
	require.NoError(t, s.Add("refresh_token_purge", "@every 1s", purge.job))

	s.Start()
	assert.Eventually(t, func() bool {
		return expiry.calls.Load() >= 1 && purge.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
