package service

import (
	"context"
	"errors"
	"time"

	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/internal/leads/transport"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 25
	maxListLimit     = 200
)

// Service implements the lead capture and profile workflows. Scoring and
// assignment run as event-driven side effects, not inline.
type Service struct {
	repo *repository.Repository
	bus  events.Bus
}

// New creates the leads service.
func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Capture creates a lead from a form submission. Duplicate detection is by
// normalized email within the organization.
func (s *Service) Capture(ctx context.Context, orgID uuid.UUID, req transport.CaptureLeadRequest) (transport.LeadResponse, error) {
	if _, err := s.repo.GetByEmail(ctx, orgID, req.Email); err == nil {
		return transport.LeadResponse{}, apperr.Conflict("a lead with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.Persistence("leads.check_duplicate", err)
	}

	params := repository.CreateLeadParams{
		OrganizationID:   orgID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		Website:          req.Website,
		CountryCode:      req.CountryCode,
		CountryName:      req.CountryName,
		State:            req.State,
		City:             req.City,
		SourceRaw:        req.Source,
		SourceChannel:    req.SourceChannel,
		UTMSource:        req.UTMSource,
		UTMMedium:        req.UTMMedium,
		UTMCampaign:      req.UTMCampaign,
		UTMTerm:          req.UTMTerm,
		UTMContent:       req.UTMContent,
		ProgramInterest:  req.ProgramInterest,
		ConsentMarketing: req.ConsentMarketing,
		ConsentSales:     req.ConsentSales,
	}

	region := ""
	if req.CountryCode != nil {
		region = *req.CountryCode
	}
	if normalized := phone.NormalizeE164(req.Phone, region); normalized != "" {
		params.PhoneE164 = &normalized
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, apperr.Persistence("leads.create", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewLeadCreated(lead.ID, lead.OrganizationID))
	}

	return toLeadResponse(lead), nil
}

// GetByID returns a lead without its profile collections.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Persistence("leads.get", err)
	}
	return toLeadResponse(lead), nil
}

// GetDetail returns a lead with education, experience, and test scores.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	education, err := s.repo.ListEducation(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Persistence("leads.list_education", err)
	}
	experience, err := s.repo.ListExperience(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Persistence("leads.list_experience", err)
	}
	testScores, err := s.repo.ListTestScores(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Persistence("leads.list_test_scores", err)
	}

	detail := transport.LeadDetailResponse{
		LeadResponse: lead,
		Education:    make([]transport.EducationResponse, 0, len(education)),
		Experience:   make([]transport.ExperienceResponse, 0, len(experience)),
		TestScores:   make([]transport.TestScoreResponse, 0, len(testScores)),
	}
	for _, rec := range education {
		detail.Education = append(detail.Education, toEducationResponse(rec))
	}
	for _, rec := range experience {
		detail.Experience = append(detail.Experience, toExperienceResponse(rec))
	}
	for _, rec := range testScores {
		detail.TestScores = append(detail.TestScores, toTestScoreResponse(rec))
	}
	return detail, nil
}

// ListQuery carries the list filters and paging parameters.
type ListQuery struct {
	Status            string
	Stage             string
	Hotness           string
	AssignedCounselor *uuid.UUID
	Limit             int
	Offset            int
}

// List returns a filtered page of leads, newest first.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListQuery) (transport.ListLeadsResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	leads, total, err := s.repo.List(ctx, orgID, repository.ListFilters{
		Status:            query.Status,
		Stage:             query.Stage,
		Hotness:           query.Hotness,
		AssignedCounselor: query.AssignedCounselor,
	}, limit, offset)
	if err != nil {
		return transport.ListLeadsResponse{}, apperr.Persistence("leads.list", err)
	}

	resp := transport.ListLeadsResponse{
		Leads:  make([]transport.LeadResponse, 0, len(leads)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, lead := range leads {
		resp.Leads = append(resp.Leads, toLeadResponse(lead))
	}
	return resp, nil
}

// Update applies a partial update to a lead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Company:         req.Company,
		Website:         req.Website,
		CountryCode:     req.CountryCode,
		State:           req.State,
		City:            req.City,
		ProgramInterest: req.ProgramInterest,
		FollowupStatus:  req.FollowupStatus,
	}
	if req.Stage != nil {
		stage := string(*req.Stage)
		params.Stage = &stage
	}
	if req.Status != nil {
		status := string(*req.Status)
		params.Status = &status
	}
	if req.MarkContacted {
		now := time.Now()
		params.LastContactedAt = &now
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Persistence("leads.update", err)
	}
	return toLeadResponse(lead), nil
}

// AddEducation attaches an education record to a lead.
func (s *Service) AddEducation(ctx context.Context, leadID uuid.UUID, req transport.AddEducationRequest) (transport.EducationResponse, error) {
	if err := s.ensureExists(ctx, leadID); err != nil {
		return transport.EducationResponse{}, err
	}

	rec, err := s.repo.AddEducation(ctx, repository.AddEducationParams{
		LeadID:         leadID,
		Institution:    req.Institution,
		DegreeLevel:    req.DegreeLevel,
		FieldOfStudy:   req.FieldOfStudy,
		GPA:            req.GPA,
		GPAScale:       req.GPAScale,
		GraduationYear: req.GraduationYear,
		IsHighest:      req.IsHighest,
	})
	if err != nil {
		return transport.EducationResponse{}, apperr.Persistence("leads.add_education", err)
	}
	return toEducationResponse(rec), nil
}

// AddExperience attaches a work history record to a lead.
func (s *Service) AddExperience(ctx context.Context, leadID uuid.UUID, req transport.AddExperienceRequest) (transport.ExperienceResponse, error) {
	if err := s.ensureExists(ctx, leadID); err != nil {
		return transport.ExperienceResponse{}, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return transport.ExperienceResponse{}, apperr.Validation("endDate must not be before startDate")
	}

	rec, err := s.repo.AddExperience(ctx, repository.AddExperienceParams{
		LeadID:    leadID,
		Company:   req.Company,
		Title:     req.Title,
		Industry:  req.Industry,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsCurrent: req.IsCurrent,
	})
	if err != nil {
		return transport.ExperienceResponse{}, apperr.Persistence("leads.add_experience", err)
	}
	return toExperienceResponse(rec), nil
}

// AddTestScore attaches a standardized test result to a lead.
func (s *Service) AddTestScore(ctx context.Context, leadID uuid.UUID, req transport.AddTestScoreRequest) (transport.TestScoreResponse, error) {
	if err := s.ensureExists(ctx, leadID); err != nil {
		return transport.TestScoreResponse{}, err
	}

	rec, err := s.repo.AddTestScore(ctx, repository.AddTestScoreParams{
		LeadID:     leadID,
		TestName:   req.TestName,
		Score:      req.Score,
		MaxScore:   req.MaxScore,
		Percentile: req.Percentile,
		TakenAt:    req.TakenAt,
	})
	if err != nil {
		return transport.TestScoreResponse{}, apperr.Persistence("leads.add_test_score", err)
	}
	return toTestScoreResponse(rec), nil
}

func (s *Service) ensureExists(ctx context.Context, leadID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Persistence("leads.get", err)
	}
	return nil
}
