// Package assignment provides the lead routing bounded context: rule-based
// matching, load-balanced counselor selection, and the assignment audit
// trail.
package assignment

import (
	"context"
	"time"

	"admissions_crm_backend/internal/assignment/handler"
	"admissions_crm_backend/internal/assignment/repository"
	"admissions_crm_backend/internal/assignment/service"
	"admissions_crm_backend/internal/events"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/logger"
	"admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the assignment bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the assignment module. New leads are
// routed automatically via the LeadCreated event; an assignment failure never
// fails the capture. The bus runs subscribers in subscription order and the
// leads module registers its scoring handler first, so routing evaluates
// lead_score rules against the freshly persisted score.
func NewModule(
	pool *pgxpool.Pool,
	rdb *redis.Client,
	statsTTL time.Duration,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
	bulkEnqueuer handler.BulkEnqueuer,
) *Module {
	repo := repository.New(pool)
	selector := service.NewSelector(repo)
	cache := service.NewStatsCache(rdb, statsTTL)
	svc := service.New(repo, selector, cache, eventBus, log)

	eventBus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		if _, err := svc.Assign(ctx, e.LeadID, e.OrganizationID); err != nil {
			log.SideEffectFailed("assign_on_create", e.LeadID.String(), err)
		}
		return nil
	}))

	return &Module{
		handler: handler.New(svc, bulkEnqueuer, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assignment"
}

// Service returns the assignment engine for external use (background worker).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts assignment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/assignments"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
