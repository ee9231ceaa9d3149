// Package attribution provides marketing journey and touchpoint bookkeeping.
// It supplies scoring inputs indirectly through the pointers it maintains on
// lead records.
package attribution

import (
	"admissions_crm_backend/internal/attribution/handler"
	"admissions_crm_backend/internal/attribution/repository"
	"admissions_crm_backend/internal/attribution/service"
	apphttp "admissions_crm_backend/internal/http"
	"admissions_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the attribution bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the attribution module.
func NewModule(pool *pgxpool.Pool, pointers service.TouchPointerSetter, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, pointers)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "attribution"
}

// Service returns the attribution service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts attribution routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Public.Group("/attribution"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/attribution"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
