package job

import (
	"context"

	"insightrag-be/internal/service"
)

// PurgeJob applies the session TTL between requests so expired documents do not
// linger in memory until the next call.
type PurgeJob struct {
	sessionService service.ISessionService
}

func NewPurgeJob(sessionService service.ISessionService) *PurgeJob {
	return &PurgeJob{sessionService: sessionService}
}

func (j *PurgeJob) Name() string {
	return "session_purge"
}

func (j *PurgeJob) Run(ctx context.Context) error {
	j.sessionService.PurgeExpired(ctx)
	return nil
}
