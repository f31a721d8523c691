package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"chronos/internal/platform/db"
)

const JobFaceSync = "face_sync"

type RunFunc func(context.Context) (any, error)

// RunStore persists one row per job execution. Both methods are best effort.
type RunStore interface {
	Start(ctx context.Context, jobType string) (int64, error)
	Finish(ctx context.Context, id int64, status string, details []byte) error
}

type Service struct {
	runs   RunStore
	logger *zap.Logger
	cron   *cron.Cron
	queue  chan job
	done   chan struct{}
	cancel context.CancelFunc
}

type job struct {
	Type string
	Run  RunFunc
}

func New(runs RunStore, logger *zap.Logger) *Service {
	return &Service{
		runs:   runs,
		logger: logger,
		cron:   cron.New(),
		queue:  make(chan job, 32),
		done:   make(chan struct{}),
	}
}

// Schedule registers run under a standard five field cron expression. Each
// tick only enqueues, so a slow run never overlaps itself on the cron goroutine.
func (s *Service) Schedule(spec, jobType string, run RunFunc) error {
	if _, err := s.cron.AddFunc(spec, func() { s.Enqueue(jobType, run) }); err != nil {
		return fmt.Errorf("schedule %s %q: %w", jobType, spec, err)
	}
	s.logger.Info("job scheduled", zap.String("job_type", jobType), zap.String("spec", spec))
	return nil
}

func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.worker(ctx)
	s.cron.Start()
}

// Stop halts the scheduler, cancels the running job and waits for it.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Service) Enqueue(jobType string, run RunFunc) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.logger.Warn("job queue full", zap.String("job_type", jobType))
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.logger.Warn("job run failed", zap.String("job_type", j.Type), zap.Error(err))
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	start := time.Now()
	runID, err := s.runs.Start(ctx, j.Type)
	if err != nil {
		s.logger.Warn("job run insert failed", zap.String("job_type", j.Type), zap.Error(err))
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil || details == nil {
		detailsJSON = []byte("{}")
	}
	if runID != 0 {
		if updErr := s.runs.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			s.logger.Warn("job run update failed", zap.Int64("run_id", runID), zap.Error(updErr))
		}
	}
	s.logger.Info("job finished",
		zap.String("job_type", j.Type),
		zap.String("status", status),
		zap.Duration("duration", time.Since(start)),
	)
	return details, err
}

type PGRunStore struct {
	DB      *pgxpool.Pool
	Timeout time.Duration
}

func NewRunStore(pool *pgxpool.Pool, timeout time.Duration) *PGRunStore {
	return &PGRunStore{DB: pool, Timeout: timeout}
}

func (s *PGRunStore) Start(ctx context.Context, jobType string) (int64, error) {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, 'running')
    RETURNING id
  `, jobType).Scan(&id)
	return id, db.Classify(err)
}

func (s *PGRunStore) Finish(ctx context.Context, id int64, status string, details []byte) error {
	ctx, cancel := db.Bounded(ctx, s.Timeout)
	defer cancel()
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, id)
	return db.Classify(err)
}
