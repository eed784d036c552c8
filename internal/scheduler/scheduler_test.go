package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New([]JobSpec{{
		Name:     "broken",
		Schedule: "not a cron expression",
		Run:      func(context.Context) error { return nil },
	}})
	assert.Error(t, err)
}

func TestSchedulerRunsJob(t *testing.T) {
	var runs atomic.Int32

	s, err := New([]JobSpec{{
		Name:     "tick",
		Schedule: "@every 10ms",
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}})
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()
}

func TestSchedulerStopWaitsForInflight(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool

	s, err := New([]JobSpec{{
		Name:     "slow",
		Schedule: "@every 10ms",
		Run: func(context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			time.Sleep(50 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	}})
	require.NoError(t, err)

	s.Start()
	<-started
	s.Stop()

	assert.True(t, finished.Load(), "Stop must wait for the running job")
}
