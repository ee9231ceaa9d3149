package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrJourneyNotFound = errors.New("journey not found")

// Journey groups the touchpoints of one visitor from first touch to
// conversion.
type Journey struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         *uuid.UUID
	AnonymousID    *string
	Status         string
	FirstTouchAt   *time.Time
	LastTouchAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Touchpoint is one marketing interaction inside a journey.
type Touchpoint struct {
	ID         uuid.UUID
	JourneyID  uuid.UUID
	LeadID     *uuid.UUID
	OccurredAt time.Time
	EventType  string
	Channel    *string
	Source     *string
	Medium     *string
	Campaign   *string
	LandingURL *string
	PageURL    *string
	UTMSource  *string
	UTMMedium  *string
	UTMTerm    *string
	CreatedAt  time.Time
}

type CreateJourneyParams struct {
	OrganizationID uuid.UUID
	LeadID         *uuid.UUID
	AnonymousID    *string
}

type CreateTouchpointParams struct {
	JourneyID  uuid.UUID
	LeadID     *uuid.UUID
	OccurredAt time.Time
	EventType  string
	Channel    *string
	Source     *string
	Medium     *string
	Campaign   *string
	LandingURL *string
	PageURL    *string
	UTMSource  *string
	UTMMedium  *string
	UTMTerm    *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateJourney(ctx context.Context, params CreateJourneyParams) (Journey, error) {
	var j Journey
	err := r.pool.QueryRow(ctx, `
		INSERT INTO journeys (organization_id, lead_id, anonymous_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING id, organization_id, lead_id, anonymous_id, status, first_touch_at, last_touch_at, created_at, updated_at
	`, params.OrganizationID, params.LeadID, params.AnonymousID).Scan(
		&j.ID, &j.OrganizationID, &j.LeadID, &j.AnonymousID, &j.Status,
		&j.FirstTouchAt, &j.LastTouchAt, &j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

func (r *Repository) GetJourney(ctx context.Context, id uuid.UUID) (Journey, error) {
	var j Journey
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, lead_id, anonymous_id, status, first_touch_at, last_touch_at, created_at, updated_at
		FROM journeys WHERE id = $1
	`, id).Scan(
		&j.ID, &j.OrganizationID, &j.LeadID, &j.AnonymousID, &j.Status,
		&j.FirstTouchAt, &j.LastTouchAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Journey{}, ErrJourneyNotFound
	}
	return j, err
}

// BindLead attaches a captured lead to an existing anonymous journey.
func (r *Repository) BindLead(ctx context.Context, journeyID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE journeys
		SET lead_id = $2, status = 'lead_created', updated_at = now()
		WHERE id = $1
	`, journeyID, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJourneyNotFound
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE touchpoints SET lead_id = $2 WHERE journey_id = $1 AND lead_id IS NULL
	`, journeyID, leadID)
	return err
}

// AddTouchpoint inserts a touchpoint and rolls the journey's touch window
// forward.
func (r *Repository) AddTouchpoint(ctx context.Context, params CreateTouchpointParams) (Touchpoint, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Touchpoint{}, err
	}
	defer tx.Rollback(ctx)

	var tp Touchpoint
	err = tx.QueryRow(ctx, `
		INSERT INTO touchpoints (
			journey_id, lead_id, occurred_at, event_type, channel, source, medium, campaign,
			landing_url, page_url, utm_source, utm_medium, utm_term
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, journey_id, lead_id, occurred_at, event_type, channel, source, medium, campaign,
			landing_url, page_url, utm_source, utm_medium, utm_term, created_at
	`,
		params.JourneyID, params.LeadID, params.OccurredAt, params.EventType,
		params.Channel, params.Source, params.Medium, params.Campaign,
		params.LandingURL, params.PageURL, params.UTMSource, params.UTMMedium, params.UTMTerm,
	).Scan(
		&tp.ID, &tp.JourneyID, &tp.LeadID, &tp.OccurredAt, &tp.EventType,
		&tp.Channel, &tp.Source, &tp.Medium, &tp.Campaign,
		&tp.LandingURL, &tp.PageURL, &tp.UTMSource, &tp.UTMMedium, &tp.UTMTerm, &tp.CreatedAt,
	)
	if err != nil {
		return Touchpoint{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE journeys
		SET first_touch_at = LEAST(COALESCE(first_touch_at, $2), $2),
			last_touch_at = GREATEST(COALESCE(last_touch_at, $2), $2),
			updated_at = now()
		WHERE id = $1
	`, params.JourneyID, params.OccurredAt); err != nil {
		return Touchpoint{}, err
	}

	return tp, tx.Commit(ctx)
}

// ListTouchpoints returns a journey's touchpoints in occurrence order.
func (r *Repository) ListTouchpoints(ctx context.Context, journeyID uuid.UUID) ([]Touchpoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, journey_id, lead_id, occurred_at, event_type, channel, source, medium, campaign,
			landing_url, page_url, utm_source, utm_medium, utm_term, created_at
		FROM touchpoints
		WHERE journey_id = $1
		ORDER BY occurred_at ASC
	`, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	touchpoints := make([]Touchpoint, 0)
	for rows.Next() {
		var tp Touchpoint
		if err := rows.Scan(
			&tp.ID, &tp.JourneyID, &tp.LeadID, &tp.OccurredAt, &tp.EventType,
			&tp.Channel, &tp.Source, &tp.Medium, &tp.Campaign,
			&tp.LandingURL, &tp.PageURL, &tp.UTMSource, &tp.UTMMedium, &tp.UTMTerm, &tp.CreatedAt,
		); err != nil {
			return nil, err
		}
		touchpoints = append(touchpoints, tp)
	}
	return touchpoints, rows.Err()
}
