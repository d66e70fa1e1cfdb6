package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"insightrag-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return nil
}

func TestCronScheduler_RejectsBadSpec(t *testing.T) {
	s := NewCronScheduler(logger.NewNopLogger())
	assert.Error(t, s.AddJob(&countingJob{}, "not a spec"))
}

func TestCronScheduler_AcceptsDescriptorsAndFiveFieldSpecs(t *testing.T) {
	s := NewCronScheduler(logger.NewNopLogger())
	assert.NoError(t, s.AddJob(&countingJob{}, "@every 1m"))
	assert.NoError(t, s.AddJob(&countingJob{}, "*/5 * * * *"))
}

func TestCronScheduler_RunsJob(t *testing.T) {
	s := NewCronScheduler(logger.NewNopLogger())
	job := &countingJob{}
	require.NoError(t, s.AddJob(job, "@every 1s"))

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
