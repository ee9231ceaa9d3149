package scheduler

import (
	"context"
	"fmt"

	assignmentservice "admissions_crm_backend/internal/assignment/service"
	"admissions_crm_backend/internal/config"
	"admissions_crm_backend/internal/leads/scoring"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Worker consumes background tasks: full-organization rescores and bulk
// assignment runs.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	scoringSvc *scoring.Service
	assignSvc  *assignmentservice.Service
	log        *logger.Logger
}

func NewWorker(cfg *config.Config, scoringSvc *scoring.Service, assignSvc *assignmentservice.Service, log *logger.Logger) (*Worker, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.AsynqQueue
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		scoringSvc: scoringSvc,
		assignSvc:  assignSvc,
		log:        log,
	}

	mux.HandleFunc(TaskRescoreAll, w.handleRescoreAll)
	mux.HandleFunc(TaskBulkAssign, w.handleBulkAssign)

	return w, nil
}

func (w *Worker) handleRescoreAll(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRescoreAllPayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	items, err := w.scoringSvc.RecalculateAll(ctx, orgID)
	if err != nil {
		return err
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	w.log.Info("rescore all finished", "org", orgID, "total", len(items), "failed", failed)
	return nil
}

func (w *Worker) handleBulkAssign(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseBulkAssignPayload(task)
	if err != nil {
		return err
	}

	orgID, err := uuid.Parse(payload.OrganizationID)
	if err != nil {
		return err
	}

	leadIDs := make([]uuid.UUID, 0, len(payload.LeadIDs))
	for _, raw := range payload.LeadIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return err
		}
		leadIDs = append(leadIDs, id)
	}

	summary := w.assignSvc.BulkAssign(ctx, leadIDs, orgID)
	w.log.Info("bulk assign finished", "org", orgID, "total", summary.Total, "successful", summary.Successful, "failed", summary.Failed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
