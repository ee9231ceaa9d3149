package service

import (
	"admissions_crm_backend/internal/leads/repository"
	"admissions_crm_backend/internal/leads/transport"
)

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                lead.ID,
		OrganizationID:    lead.OrganizationID,
		FirstName:         lead.FirstName,
		LastName:          lead.LastName,
		Email:             lead.Email,
		Phone:             lead.Phone,
		PhoneE164:         lead.PhoneE164,
		Company:           lead.Company,
		Website:           lead.Website,
		CountryCode:       lead.CountryCode,
		CountryName:       lead.CountryName,
		State:             lead.State,
		City:              lead.City,
		Source:            lead.SourceRaw,
		SourceChannel:     lead.SourceChannel,
		UTMSource:         lead.UTMSource,
		UTMMedium:         lead.UTMMedium,
		UTMCampaign:       lead.UTMCampaign,
		Stage:             lead.Stage,
		Status:            lead.Status,
		ProgramInterest:   lead.ProgramInterest,
		AcademicScore:     lead.AcademicScore,
		ExperienceScore:   lead.ExperienceScore,
		ProgramFitScore:   lead.ProgramFitScore,
		EngagementScore:   lead.EngagementScore,
		GeographyScore:    lead.GeographyScore,
		DataQualityScore:  lead.DataQualityScore,
		LeadScore:         lead.LeadScore,
		Hotness:           lead.Hotness,
		LastScoredAt:      lead.LastScoredAt,
		LastContactedAt:   lead.LastContactedAt,
		AssignedCounselor: lead.AssignedCounselor,
		AssignmentDate:    lead.AssignmentDate,
		FollowupStatus:    lead.FollowupStatus,
		CreatedAt:         lead.CreatedAt,
		UpdatedAt:         lead.UpdatedAt,
	}
}

func toEducationResponse(rec repository.EducationRecord) transport.EducationResponse {
	return transport.EducationResponse{
		ID:             rec.ID,
		Institution:    rec.Institution,
		DegreeLevel:    rec.DegreeLevel,
		FieldOfStudy:   rec.FieldOfStudy,
		GPA:            rec.GPA,
		GPAScale:       rec.GPAScale,
		GraduationYear: rec.GraduationYear,
		IsHighest:      rec.IsHighest,
	}
}

func toExperienceResponse(rec repository.ExperienceRecord) transport.ExperienceResponse {
	return transport.ExperienceResponse{
		ID:        rec.ID,
		Company:   rec.Company,
		Title:     rec.Title,
		Industry:  rec.Industry,
		StartDate: rec.StartDate,
		EndDate:   rec.EndDate,
		IsCurrent: rec.IsCurrent,
	}
}

func toTestScoreResponse(rec repository.TestScoreRecord) transport.TestScoreResponse {
	return transport.TestScoreResponse{
		ID:         rec.ID,
		TestName:   rec.TestName,
		Score:      rec.Score,
		MaxScore:   rec.MaxScore,
		Percentile: rec.Percentile,
		TakenAt:    rec.TakenAt,
	}
}
