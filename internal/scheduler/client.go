package scheduler

import (
	"context"
	"fmt"

	"admissions_crm_backend/internal/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background tasks. A nil client is safe to call; callers
// without Redis configured fall back to inline execution at the handler
// layer.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg *config.Config) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRescoreAll queues a full organization rescore.
func (c *Client) EnqueueRescoreAll(ctx context.Context, orgID uuid.UUID) (string, error) {
	task, err := NewRescoreAllTask(RescoreAllPayload{OrganizationID: orgID.String()})
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// EnqueueBulkAssign queues a bulk assignment run.
func (c *Client) EnqueueBulkAssign(ctx context.Context, orgID uuid.UUID, leadIDs []uuid.UUID) (string, error) {
	ids := make([]string, 0, len(leadIDs))
	for _, id := range leadIDs {
		ids = append(ids, id.String())
	}

	task, err := NewBulkAssignTask(BulkAssignPayload{OrganizationID: orgID.String(), LeadIDs: ids})
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
