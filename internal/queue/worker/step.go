package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/job"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/jobs"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/notifications"
)

// ProcessOne claims and executes at most one job. The bool reports
// whether a job was claimed, so the run loop knows when to go idle.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err)
		w.observeJob(j.Type, resultFor(j), start)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", start)
		return true, err
	}

	w.log.Info("job done", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts)
	w.observeJob(j.Type, "done", start)

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	switch j.Type {
	case jobs.TypeLeadNotification:
		p, err := jobs.ParseLeadNotification(j.Payload)

		if err != nil {
			return err
		}

		return w.notifier.SendLeadAlert(ctx, notifications.SendLeadAlertInput{
			LeadID:        p.LeadID,
			Name:          p.Name,
			Email:         p.Email,
			Phone:         p.Phone,
			ResourceID:    p.ResourceID,
			ResourceTitle: p.ResourceTitle,
		})

	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	// A malformed payload never gets better; fail it immediately.
	if errors.Is(execErr, jobs.ErrInvalidPayload) || j.Attempts >= j.MaxAttempts {
		w.log.Error("job failed permanently",
			"job_id", j.ID, "type", j.Type, "attempt", j.Attempts, "error", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed errored", "job_id", j.ID, "error", err)
		}
		return
	}

	delay := ExponentialBackoff(j.Attempts)
	w.log.Warn("job failed, rescheduling",
		"job_id", j.ID, "type", j.Type, "attempt", j.Attempts, "retry_in", delay.String(), "error", execErr)

	if err := w.repo.Reschedule(ctx, j.ID, time.Now().UTC().Add(delay), execErr.Error()); err != nil {
		w.log.Error("reschedule errored", "job_id", j.ID, "error", err)
	}
}

func resultFor(j job.Job) string {
	if j.Attempts >= j.MaxAttempts {
		return "failed"
	}
	return "retry"
}

func (w *Worker) observeJob(jobType, result string, start time.Time) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(time.Since(start).Seconds())
}
