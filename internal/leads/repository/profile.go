package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EducationRecord is one academic credential attached to a lead.
type EducationRecord struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	Institution    string
	DegreeLevel    string
	FieldOfStudy   *string
	GPA            *float64
	GPAScale       *float64
	GraduationYear *int
	IsHighest      bool
	CreatedAt      time.Time
}

// ExperienceRecord is one work history entry attached to a lead.
type ExperienceRecord struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Company   string
	Title     string
	Industry  *string
	StartDate time.Time
	EndDate   *time.Time
	IsCurrent bool
	CreatedAt time.Time
}

// TestScoreRecord is a standardized test result for a lead.
type TestScoreRecord struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	TestName   string
	Score      float64
	MaxScore   *float64
	Percentile *float64
	TakenAt    *time.Time
	CreatedAt  time.Time
}

type AddEducationParams struct {
	LeadID         uuid.UUID
	Institution    string
	DegreeLevel    string
	FieldOfStudy   *string
	GPA            *float64
	GPAScale       *float64
	GraduationYear *int
	IsHighest      bool
}

func (r *Repository) AddEducation(ctx context.Context, params AddEducationParams) (EducationRecord, error) {
	// Only one record per lead may be flagged highest.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return EducationRecord{}, err
	}
	defer tx.Rollback(ctx)

	if params.IsHighest {
		if _, err := tx.Exec(ctx, `
			UPDATE lead_education SET is_highest = false WHERE lead_id = $1 AND is_highest = true
		`, params.LeadID); err != nil {
			return EducationRecord{}, err
		}
	}

	var rec EducationRecord
	err = tx.QueryRow(ctx, `
		INSERT INTO lead_education (
			lead_id, institution, degree_level, field_of_study, gpa, gpa_scale, graduation_year, is_highest
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, lead_id, institution, degree_level, field_of_study, gpa, gpa_scale, graduation_year, is_highest, created_at
	`,
		params.LeadID, params.Institution, params.DegreeLevel, params.FieldOfStudy,
		params.GPA, params.GPAScale, params.GraduationYear, params.IsHighest,
	).Scan(
		&rec.ID, &rec.LeadID, &rec.Institution, &rec.DegreeLevel, &rec.FieldOfStudy,
		&rec.GPA, &rec.GPAScale, &rec.GraduationYear, &rec.IsHighest, &rec.CreatedAt,
	)
	if err != nil {
		return EducationRecord{}, err
	}

	return rec, tx.Commit(ctx)
}

// ListEducation returns a lead's education records, highest credential first.
func (r *Repository) ListEducation(ctx context.Context, leadID uuid.UUID) ([]EducationRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, institution, degree_level, field_of_study, gpa, gpa_scale, graduation_year, is_highest, created_at
		FROM lead_education
		WHERE lead_id = $1
		ORDER BY is_highest DESC, graduation_year DESC NULLS LAST
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]EducationRecord, 0)
	for rows.Next() {
		var rec EducationRecord
		if err := rows.Scan(
			&rec.ID, &rec.LeadID, &rec.Institution, &rec.DegreeLevel, &rec.FieldOfStudy,
			&rec.GPA, &rec.GPAScale, &rec.GraduationYear, &rec.IsHighest, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type AddExperienceParams struct {
	LeadID    uuid.UUID
	Company   string
	Title     string
	Industry  *string
	StartDate time.Time
	EndDate   *time.Time
	IsCurrent bool
}

func (r *Repository) AddExperience(ctx context.Context, params AddExperienceParams) (ExperienceRecord, error) {
	var rec ExperienceRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_experiences (lead_id, company, title, industry, start_date, end_date, is_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, lead_id, company, title, industry, start_date, end_date, is_current, created_at
	`,
		params.LeadID, params.Company, params.Title, params.Industry,
		params.StartDate, params.EndDate, params.IsCurrent,
	).Scan(
		&rec.ID, &rec.LeadID, &rec.Company, &rec.Title, &rec.Industry,
		&rec.StartDate, &rec.EndDate, &rec.IsCurrent, &rec.CreatedAt,
	)
	return rec, err
}

// ListExperience returns a lead's work history, most recent role first.
func (r *Repository) ListExperience(ctx context.Context, leadID uuid.UUID) ([]ExperienceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, company, title, industry, start_date, end_date, is_current, created_at
		FROM lead_experiences
		WHERE lead_id = $1
		ORDER BY start_date DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ExperienceRecord, 0)
	for rows.Next() {
		var rec ExperienceRecord
		if err := rows.Scan(
			&rec.ID, &rec.LeadID, &rec.Company, &rec.Title, &rec.Industry,
			&rec.StartDate, &rec.EndDate, &rec.IsCurrent, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type AddTestScoreParams struct {
	LeadID     uuid.UUID
	TestName   string
	Score      float64
	MaxScore   *float64
	Percentile *float64
	TakenAt    *time.Time
}

func (r *Repository) AddTestScore(ctx context.Context, params AddTestScoreParams) (TestScoreRecord, error) {
	var rec TestScoreRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_test_scores (lead_id, test_name, score, max_score, percentile, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, test_name, score, max_score, percentile, taken_at, created_at
	`,
		params.LeadID, params.TestName, params.Score, params.MaxScore, params.Percentile, params.TakenAt,
	).Scan(
		&rec.ID, &rec.LeadID, &rec.TestName, &rec.Score, &rec.MaxScore, &rec.Percentile,
		&rec.TakenAt, &rec.CreatedAt,
	)
	return rec, err
}

// ListTestScores returns a lead's test results, best percentile first.
func (r *Repository) ListTestScores(ctx context.Context, leadID uuid.UUID) ([]TestScoreRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, test_name, score, max_score, percentile, taken_at, created_at
		FROM lead_test_scores
		WHERE lead_id = $1
		ORDER BY percentile DESC NULLS LAST, created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]TestScoreRecord, 0)
	for rows.Next() {
		var rec TestScoreRecord
		if err := rows.Scan(
			&rec.ID, &rec.LeadID, &rec.TestName, &rec.Score, &rec.MaxScore, &rec.Percentile,
			&rec.TakenAt, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
