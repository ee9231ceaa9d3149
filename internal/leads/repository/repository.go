package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	EmailNormalized   string
	Phone             string
	PhoneE164         *string
	Company           *string
	Website           *string
	CountryCode       *string
	CountryName       *string
	State             *string
	City              *string
	SourceRaw         *string
	SourceChannel     *string
	UTMSource         *string
	UTMMedium         *string
	UTMCampaign       *string
	UTMTerm           *string
	UTMContent        *string
	FirstTouchID      *uuid.UUID
	LastTouchID       *uuid.UUID
	JourneyID         *uuid.UUID
	Stage             string
	Status            string
	ProgramInterest   *string
	ConsentMarketing  bool
	ConsentSales      bool
	AcademicScore     int
	ExperienceScore   int
	ProgramFitScore   int
	EngagementScore   int
	GeographyScore    int
	DataQualityScore  int
	LeadScore         int
	Hotness           string
	LastScoredAt      *time.Time
	LastContactedAt   *time.Time
	AssignedCounselor *uuid.UUID
	AssignmentDate    *time.Time
	AssignmentRule    []byte
	FollowupStatus    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const leadColumns = `id, organization_id, first_name, last_name, email, email_normalized, phone, phone_e164,
	company, website, country_code, country_name, state, city,
	source_raw, source_channel, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
	first_touch_id, last_touch_id, journey_id, stage, status, program_interest,
	consent_marketing, consent_sales,
	academic_score, experience_score, program_fit_score, engagement_score, geography_score,
	data_quality_score, lead_score, hotness_snapshot, last_scored_at, last_contacted_at,
	assigned_counselor, assignment_date, assignment_rule, followup_status, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.EmailNormalized,
		&lead.Phone, &lead.PhoneE164, &lead.Company, &lead.Website, &lead.CountryCode, &lead.CountryName,
		&lead.State, &lead.City,
		&lead.SourceRaw, &lead.SourceChannel, &lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign,
		&lead.UTMTerm, &lead.UTMContent,
		&lead.FirstTouchID, &lead.LastTouchID, &lead.JourneyID, &lead.Stage, &lead.Status, &lead.ProgramInterest,
		&lead.ConsentMarketing, &lead.ConsentSales,
		&lead.AcademicScore, &lead.ExperienceScore, &lead.ProgramFitScore, &lead.EngagementScore,
		&lead.GeographyScore, &lead.DataQualityScore, &lead.LeadScore, &lead.Hotness,
		&lead.LastScoredAt, &lead.LastContactedAt,
		&lead.AssignedCounselor, &lead.AssignmentDate, &lead.AssignmentRule, &lead.FollowupStatus,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

type CreateLeadParams struct {
	OrganizationID   uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	PhoneE164        *string
	Company          *string
	Website          *string
	CountryCode      *string
	CountryName      *string
	State            *string
	City             *string
	SourceRaw        *string
	SourceChannel    *string
	UTMSource        *string
	UTMMedium        *string
	UTMCampaign      *string
	UTMTerm          *string
	UTMContent       *string
	ProgramInterest  *string
	ConsentMarketing bool
	ConsentSales     bool
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	emailNormalized := strings.ToLower(strings.TrimSpace(params.Email))

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			organization_id, first_name, last_name, email, email_normalized, phone, phone_e164,
			company, website, country_code, country_name, state, city,
			source_raw, source_channel, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			program_interest, consent_marketing, consent_sales
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING `+leadColumns,
		params.OrganizationID, params.FirstName, params.LastName, params.Email, emailNormalized,
		params.Phone, params.PhoneE164, params.Company, params.Website, params.CountryCode, params.CountryName,
		params.State, params.City, params.SourceRaw, params.SourceChannel,
		params.UTMSource, params.UTMMedium, params.UTMCampaign, params.UTMTerm, params.UTMContent,
		params.ProgramInterest, params.ConsentMarketing, params.ConsentSales,
	)

	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return scanLead(row)
}

func (r *Repository) GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (Lead, error) {
	emailNormalized := strings.ToLower(strings.TrimSpace(email))
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE organization_id = $1 AND email_normalized = $2 AND deleted_at IS NULL
	`, orgID, emailNormalized)
	return scanLead(row)
}

// ListFilters narrows the List query. Zero values mean no filter.
type ListFilters struct {
	Status            string
	Stage             string
	Hotness           string
	AssignedCounselor *uuid.UUID
}

func (r *Repository) List(ctx context.Context, orgID uuid.UUID, filters ListFilters, limit, offset int) ([]Lead, int, error) {
	where := []string{"organization_id = $1", "deleted_at IS NULL"}
	args := []interface{}{orgID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Stage != "" {
		args = append(args, filters.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if filters.Hotness != "" {
		args = append(args, filters.Hotness)
		where = append(where, fmt.Sprintf("hotness_snapshot = $%d", len(args)))
	}
	if filters.AssignedCounselor != nil {
		args = append(args, *filters.AssignedCounselor)
		where = append(where, fmt.Sprintf("assigned_counselor = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM leads WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

type UpdateLeadParams struct {
	FirstName       *string
	LastName        *string
	Phone           *string
	Company         *string
	Website         *string
	CountryCode     *string
	State           *string
	City            *string
	Stage           *string
	Status          *string
	ProgramInterest *string
	FollowupStatus  *string
	LastContactedAt *time.Time
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.FirstName != nil {
		appendSet("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		appendSet("last_name", *params.LastName)
	}
	if params.Phone != nil {
		appendSet("phone", *params.Phone)
	}
	if params.Company != nil {
		appendSet("company", *params.Company)
	}
	if params.Website != nil {
		appendSet("website", *params.Website)
	}
	if params.CountryCode != nil {
		appendSet("country_code", *params.CountryCode)
	}
	if params.State != nil {
		appendSet("state", *params.State)
	}
	if params.City != nil {
		appendSet("city", *params.City)
	}
	if params.Stage != nil {
		appendSet("stage", *params.Stage)
	}
	if params.Status != nil {
		appendSet("status", *params.Status)
	}
	if params.ProgramInterest != nil {
		appendSet("program_interest", *params.ProgramInterest)
	}
	if params.FollowupStatus != nil {
		appendSet("followup_status", *params.FollowupStatus)
	}
	if params.LastContactedAt != nil {
		appendSet("last_contacted_at", *params.LastContactedAt)
	}

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE leads SET %s WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s
	`, strings.Join(sets, ", "), leadColumns), args...)

	return scanLead(row)
}

// ScoreUpdate carries a full scoring result. Every scoring run overwrites all
// sub-scores so re-running on unchanged data is idempotent.
type ScoreUpdate struct {
	AcademicScore    int
	ExperienceScore  int
	ProgramFitScore  int
	EngagementScore  int
	GeographyScore   int
	DataQualityScore int
	LeadScore        int
	Hotness          string
}

func (r *Repository) UpdateScores(ctx context.Context, id uuid.UUID, update ScoreUpdate) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			academic_score = $2,
			experience_score = $3,
			program_fit_score = $4,
			engagement_score = $5,
			geography_score = $6,
			data_quality_score = $7,
			lead_score = $8,
			hotness_snapshot = $9,
			last_scored_at = now(),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id,
		update.AcademicScore, update.ExperienceScore, update.ProgramFitScore,
		update.EngagementScore, update.GeographyScore, update.DataQualityScore,
		update.LeadScore, update.Hotness,
	)
	return scanLead(row)
}

// ListScorableIDs returns the ids of every non-deleted lead in the
// organization, used by the recalculate-all mode.
func (r *Repository) ListScorableIDs(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM leads WHERE organization_id = $1 AND deleted_at IS NULL ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetTouchPointers updates the attribution pointers on a lead after a
// touchpoint is recorded. The first-touch pointer is only set once.
func (r *Repository) SetTouchPointers(ctx context.Context, id uuid.UUID, touchID, journeyID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			first_touch_id = COALESCE(first_touch_id, $2),
			last_touch_id = $2,
			journey_id = COALESCE(journey_id, $3),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id, touchID, journeyID)
	return err
}
