package scoring

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// batchConcurrency bounds parallel scoring runs in batch mode.
const batchConcurrency = 8

// Result is the outcome of scoring one lead.
type Result struct {
	LeadID     uuid.UUID `json:"lead_id"`
	TotalScore int       `json:"total_score"`
	Hotness    string    `json:"hotness"`
	Breakdown  Breakdown `json:"breakdown"`
}

// BatchItem is one entry of a batch scoring run. Exactly one of Result or
// Error is set.
type BatchItem struct {
	LeadID uuid.UUID `json:"lead_id"`
	Result *Result   `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// Service orchestrates the scoring model: it loads the lead and its profile
// records, runs the model, persists the breakdown, and publishes LeadScored.
type Service struct {
	repo  *repository.Repository
	model *Model
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates the scoring engine.
func NewService(repo *repository.Repository, model *Model, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		model: model,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Calculate scores a single lead and persists the result. Re-running on
// unchanged inputs overwrites the stored scores with identical values.
func (s *Service) Calculate(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("lead not found")
		}
		return Result{}, apperr.Persistence("scoring.get_lead", err)
	}

	var (
		education  []repository.EducationRecord
		experience []repository.ExperienceRecord
		testScores []repository.TestScoreRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		education, err = s.repo.ListEducation(gctx, leadID)
		return err
	})
	g.Go(func() error {
		var err error
		experience, err = s.repo.ListExperience(gctx, leadID)
		return err
	})
	g.Go(func() error {
		var err error
		testScores, err = s.repo.ListTestScores(gctx, leadID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, apperr.Persistence("scoring.load_profile", err)
	}

	breakdown := s.model.Score(lead, education, experience, testScores, s.now())

	if _, err := s.repo.UpdateScores(ctx, leadID, repository.ScoreUpdate{
		AcademicScore:    breakdown.Academic,
		ExperienceScore:  breakdown.Experience,
		ProgramFitScore:  breakdown.ProgramFit,
		EngagementScore:  breakdown.Engagement,
		GeographyScore:   breakdown.Geography,
		DataQualityScore: breakdown.DataQuality,
		LeadScore:        breakdown.Total,
		Hotness:          breakdown.Hotness,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("lead not found")
		}
		return Result{}, apperr.Persistence("scoring.update_scores", err)
	}

	result := Result{
		LeadID:     leadID,
		TotalScore: breakdown.Total,
		Hotness:    breakdown.Hotness,
		Breakdown:  breakdown,
	}

	s.log.ScoringEvent(leadID.String(), breakdown.Total, breakdown.Hotness)

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewLeadScored(leadID, breakdown.Total, breakdown.Hotness))
	}

	return result, nil
}

// CalculateBatch scores each lead independently. A failure on one lead is
// recorded in its item and never aborts the batch. Items come back in input
// order.
func (s *Service) CalculateBatch(ctx context.Context, leadIDs []uuid.UUID) []BatchItem {
	items := make([]BatchItem, len(leadIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, leadID := range leadIDs {
		i, leadID := i, leadID
		g.Go(func() error {
			result, err := s.Calculate(gctx, leadID)
			if err != nil {
				items[i] = BatchItem{LeadID: leadID, Error: err.Error()}
				return nil
			}
			items[i] = BatchItem{LeadID: leadID, Result: &result}
			return nil
		})
	}

	_ = g.Wait()
	return items
}

// RecalculateAll rescores every non-deleted lead in the organization.
func (s *Service) RecalculateAll(ctx context.Context, orgID uuid.UUID) ([]BatchItem, error) {
	leadIDs, err := s.repo.ListScorableIDs(ctx, orgID)
	if err != nil {
		return nil, apperr.Persistence("scoring.list_scorable", err)
	}
	return s.CalculateBatch(ctx, leadIDs), nil
}
