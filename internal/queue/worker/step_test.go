package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/job"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/jobs"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/notifications"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/queue/worker"
)

type fakeJobsRepo struct {
	claimFn func(ctx context.Context, workerID string) (job.Job, error)

	doneIDs     []string
	failed      map[string]string
	rescheduled map[string]time.Time
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{
		failed:      map[string]string{},
		rescheduled: map[string]time.Time{},
	}
}

func (f *fakeJobsRepo) ClaimNext(ctx context.Context, workerID string) (job.Job, error) {
	if f.claimFn != nil {
		return f.claimFn(ctx, workerID)
	}
	return job.Job{}, job.ErrJobNotFound
}

func (f *fakeJobsRepo) MarkDone(ctx context.Context, id string) error {
	f.doneIDs = append(f.doneIDs, id)
	return nil
}

func (f *fakeJobsRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	f.failed[id] = errMsg
	return nil
}

func (f *fakeJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled[id] = runAt
	return nil
}

func (f *fakeJobsRepo) RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	sent []notifications.SendLeadAlertInput
	err  error
}

func (f *fakeNotifier) SendLeadAlert(ctx context.Context, input notifications.SendLeadAlertInput) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, input)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func leadJob(t *testing.T, attempts int) job.Job {
	t.Helper()

	payload, err := jobs.LeadNotificationPayload{
		LeadID:     "lead-1",
		Name:       "Ada",
		Email:      "ada@example.com",
		Phone:      "+15550001",
		ResourceID: "res-1",
	}.JSON()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	return job.Job{
		ID:          "job-1",
		Type:        jobs.TypeLeadNotification,
		Payload:     payload,
		Status:      job.StatusProcessing,
		Attempts:    attempts,
		MaxAttempts: 5,
	}
}

func newWorker(repo worker.JobsRepository, notifier notifications.Notifier) *worker.Worker {
	return worker.New(worker.Config{WorkerID: "test-worker"}, repo, notifier, nil, discardLogger(), nil)
}

func TestProcessOne_NoJob(t *testing.T) {
	repo := newFakeJobsRepo()
	notifier := &fakeNotifier{}

	processed, err := newWorker(repo, notifier).ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed {
		t.Fatalf("no job should have been claimed")
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("notifier must not run without a job")
	}
}

func TestProcessOne_Success(t *testing.T) {
	repo := newFakeJobsRepo()
	j := leadJob(t, 1)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{}

	processed, err := newWorker(repo, notifier).ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !processed {
		t.Fatalf("job should have been claimed")
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(notifier.sent))
	}
	if notifier.sent[0].LeadID != "lead-1" || notifier.sent[0].Email != "ada@example.com" {
		t.Fatalf("alert input mismatch: %+v", notifier.sent[0])
	}
	if len(repo.doneIDs) != 1 || repo.doneIDs[0] != j.ID {
		t.Fatalf("expected job marked done, got %v", repo.doneIDs)
	}
	if len(repo.failed) != 0 || len(repo.rescheduled) != 0 {
		t.Fatalf("success must not fail or reschedule")
	}
}

func TestProcessOne_NotifierFailureReschedules(t *testing.T) {
	repo := newFakeJobsRepo()
	j := leadJob(t, 1)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{err: errors.New("smtp down")}

	before := time.Now().UTC()

	processed, err := newWorker(repo, notifier).ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !processed {
		t.Fatalf("job should have been claimed")
	}

	runAt, ok := repo.rescheduled[j.ID]
	if !ok {
		t.Fatalf("expected job rescheduled")
	}
	if !runAt.After(before) {
		t.Fatalf("retry must be scheduled in the future, got %v", runAt)
	}
	if len(repo.doneIDs) != 0 || len(repo.failed) != 0 {
		t.Fatalf("retryable failure must not mark done or failed")
	}
}

func TestProcessOne_InvalidPayloadFailsFast(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) {
		return job.Job{
			ID:          "job-bad",
			Type:        jobs.TypeLeadNotification,
			Payload:     json.RawMessage(`{"leadId":""}`),
			Attempts:    1,
			MaxAttempts: 5,
		}, nil
	}

	notifier := &fakeNotifier{}

	processed, err := newWorker(repo, notifier).ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !processed {
		t.Fatalf("job should have been claimed")
	}

	if _, ok := repo.failed["job-bad"]; !ok {
		t.Fatalf("invalid payload must fail permanently, got reschedules=%v", repo.rescheduled)
	}
	if len(repo.rescheduled) != 0 {
		t.Fatalf("invalid payload must not be retried")
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("notifier must not run on a bad payload")
	}
}

func TestProcessOne_ExhaustedAttemptsFail(t *testing.T) {
	repo := newFakeJobsRepo()
	j := leadJob(t, 5)
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) { return j, nil }

	notifier := &fakeNotifier{err: errors.New("smtp down")}

	if _, err := newWorker(repo, notifier).ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.failed[j.ID]; !ok {
		t.Fatalf("job at max attempts must be marked failed")
	}
	if len(repo.rescheduled) != 0 {
		t.Fatalf("job at max attempts must not be rescheduled")
	}
}

func TestProcessOne_UnknownTypeNeverRuns(t *testing.T) {
	repo := newFakeJobsRepo()
	repo.claimFn = func(ctx context.Context, workerID string) (job.Job, error) {
		return job.Job{ID: "job-x", Type: "mystery", Attempts: 1, MaxAttempts: 5}, nil
	}

	notifier := &fakeNotifier{}

	if _, err := newWorker(repo, notifier).ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.sent) != 0 {
		t.Fatalf("unknown job type must not reach the notifier")
	}
	if _, ok := repo.rescheduled["job-x"]; !ok {
		t.Fatalf("unknown type below max attempts should retry")
	}
}
