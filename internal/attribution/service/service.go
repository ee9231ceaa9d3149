package service

import (
	"context"
	"errors"
	"time"

	"admissions_crm_backend/internal/attribution/repository"
	"admissions_crm_backend/internal/attribution/transport"
	"admissions_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// TouchPointerSetter updates the attribution pointers on a lead record when
// a touchpoint lands. Implemented by the leads repository.
type TouchPointerSetter interface {
	SetTouchPointers(ctx context.Context, leadID uuid.UUID, touchID, journeyID uuid.UUID) error
}

// Service implements journey and touchpoint bookkeeping. It feeds scoring
// only indirectly: lead fields carry the attribution pointers.
type Service struct {
	repo     *repository.Repository
	pointers TouchPointerSetter
}

// New creates the attribution service.
func New(repo *repository.Repository, pointers TouchPointerSetter) *Service {
	return &Service{repo: repo, pointers: pointers}
}

// StartJourney opens a journey for a visitor.
func (s *Service) StartJourney(ctx context.Context, orgID uuid.UUID, req transport.StartJourneyRequest) (transport.JourneyResponse, error) {
	journey, err := s.repo.CreateJourney(ctx, repository.CreateJourneyParams{
		OrganizationID: orgID,
		LeadID:         req.LeadID,
		AnonymousID:    req.AnonymousID,
	})
	if err != nil {
		return transport.JourneyResponse{}, apperr.Persistence("attribution.create_journey", err)
	}
	return toJourneyResponse(journey), nil
}

// RecordTouchpoint appends an interaction to a journey and, when the journey
// is bound to a lead, rolls the lead's touch pointers forward.
func (s *Service) RecordTouchpoint(ctx context.Context, journeyID uuid.UUID, req transport.RecordTouchpointRequest) (transport.TouchpointResponse, error) {
	journey, err := s.repo.GetJourney(ctx, journeyID)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return transport.TouchpointResponse{}, apperr.NotFound("journey not found")
		}
		return transport.TouchpointResponse{}, apperr.Persistence("attribution.get_journey", err)
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	tp, err := s.repo.AddTouchpoint(ctx, repository.CreateTouchpointParams{
		JourneyID:  journeyID,
		LeadID:     journey.LeadID,
		OccurredAt: occurredAt,
		EventType:  req.EventType,
		Channel:    req.Channel,
		Source:     req.Source,
		Medium:     req.Medium,
		Campaign:   req.Campaign,
		LandingURL: req.LandingURL,
		PageURL:    req.PageURL,
		UTMSource:  req.UTMSource,
		UTMMedium:  req.UTMMedium,
		UTMTerm:    req.UTMTerm,
	})
	if err != nil {
		return transport.TouchpointResponse{}, apperr.Persistence("attribution.add_touchpoint", err)
	}

	if journey.LeadID != nil && s.pointers != nil {
		if err := s.pointers.SetTouchPointers(ctx, *journey.LeadID, tp.ID, journeyID); err != nil {
			return transport.TouchpointResponse{}, apperr.Persistence("attribution.set_pointers", err)
		}
	}

	return toTouchpointResponse(tp), nil
}

// BindLead attaches a captured lead to an anonymous journey.
func (s *Service) BindLead(ctx context.Context, journeyID, leadID uuid.UUID) error {
	if err := s.repo.BindLead(ctx, journeyID, leadID); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return apperr.NotFound("journey not found")
		}
		return apperr.Persistence("attribution.bind_lead", err)
	}
	return nil
}

// GetJourney returns a journey with its touchpoints.
func (s *Service) GetJourney(ctx context.Context, journeyID uuid.UUID) (transport.JourneyDetailResponse, error) {
	journey, err := s.repo.GetJourney(ctx, journeyID)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return transport.JourneyDetailResponse{}, apperr.NotFound("journey not found")
		}
		return transport.JourneyDetailResponse{}, apperr.Persistence("attribution.get_journey", err)
	}

	touchpoints, err := s.repo.ListTouchpoints(ctx, journeyID)
	if err != nil {
		return transport.JourneyDetailResponse{}, apperr.Persistence("attribution.list_touchpoints", err)
	}

	detail := transport.JourneyDetailResponse{
		JourneyResponse: toJourneyResponse(journey),
		Touchpoints:     make([]transport.TouchpointResponse, 0, len(touchpoints)),
	}
	for _, tp := range touchpoints {
		detail.Touchpoints = append(detail.Touchpoints, toTouchpointResponse(tp))
	}
	return detail, nil
}

func toJourneyResponse(j repository.Journey) transport.JourneyResponse {
	return transport.JourneyResponse{
		ID:             j.ID,
		OrganizationID: j.OrganizationID,
		LeadID:         j.LeadID,
		AnonymousID:    j.AnonymousID,
		Status:         j.Status,
		FirstTouchAt:   j.FirstTouchAt,
		LastTouchAt:    j.LastTouchAt,
		CreatedAt:      j.CreatedAt,
	}
}

func toTouchpointResponse(tp repository.Touchpoint) transport.TouchpointResponse {
	return transport.TouchpointResponse{
		ID:         tp.ID,
		JourneyID:  tp.JourneyID,
		LeadID:     tp.LeadID,
		OccurredAt: tp.OccurredAt,
		EventType:  tp.EventType,
		Channel:    tp.Channel,
		Source:     tp.Source,
		Medium:     tp.Medium,
		Campaign:   tp.Campaign,
		LandingURL: tp.LandingURL,
		PageURL:    tp.PageURL,
		UTMSource:  tp.UTMSource,
		UTMMedium:  tp.UTMMedium,
		UTMTerm:    tp.UTMTerm,
	}
}
