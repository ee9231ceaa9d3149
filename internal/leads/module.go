// Package leads provides the lead capture and scoring bounded context.
package leads

import (
	"context"

	"admissions_crm_backend/internal/config"
	"admissions_crm_backend/internal/events"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/internal/leads/handler"
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/internal/leads/scoring"
	"admissions_crm_backend/internal/leads/service"
	"admissions_crm_backend/platform/logger"
	"admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler        *handler.Handler
	scoringHandler *handler.ScoringHandler
	service        *service.Service
	scoringSvc     *scoring.Service
	repo           *repository.Repository
}

// NewModule creates and initializes the leads module with all its
// dependencies. New leads are scored automatically via the LeadCreated event;
// a scoring failure never fails the capture.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	val *validator.Validator,
	cfg *config.Config,
	log *logger.Logger,
	rescoreEnqueuer handler.RescoreEnqueuer,
) (*Module, error) {
	repo := repository.New(pool)

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		return nil, err
	}
	model := scoring.NewModel(scoringCfg)
	scoringSvc := scoring.NewService(repo, model, eventBus, log)

	eventBus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		if _, err := scoringSvc.Calculate(ctx, e.LeadID); err != nil {
			log.SideEffectFailed("score_on_create", e.LeadID.String(), err)
		}
		return nil
	}))

	svc := service.New(repo, eventBus)

	return &Module{
		handler:        handler.New(svc, val),
		scoringHandler: handler.NewScoringHandler(scoringSvc, rescoreEnqueuer, val),
		service:        svc,
		scoringSvc:     scoringSvc,
		repo:           repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// ScoringService returns the scoring engine for external use (background
// worker, assignment stats).
func (m *Module) ScoringService() *scoring.Service {
	return m.scoringSvc
}

// Repository returns the lead repository for cross-module wiring (e.g. the
// attribution module updating first/last touch pointers).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead and scoring routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Public.Group("/leads"))

	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
	m.scoringHandler.RegisterRoutes(leadsGroup, ctx.Protected.Group("/scoring"))
	m.scoringHandler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
