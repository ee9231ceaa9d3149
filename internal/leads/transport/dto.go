package transport

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle enums.
type LeadStage string

const (
	LeadStageInquiry     LeadStage = "inquiry"
	LeadStageApplication LeadStage = "application"
	LeadStageAdmitted    LeadStage = "admitted"
	LeadStageEnrolled    LeadStage = "enrolled"
)

type LeadStatus string

const (
	LeadStatusNew          LeadStatus = "new"
	LeadStatusContacted    LeadStatus = "contacted"
	LeadStatusQualified    LeadStatus = "qualified"
	LeadStatusDisqualified LeadStatus = "disqualified"
	LeadStatusConverted    LeadStatus = "converted"
	LeadStatusLost         LeadStatus = "lost"
)

// CaptureLeadRequest is the payload of the public lead form.
type CaptureLeadRequest struct {
	FirstName        string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName         string  `json:"lastName" validate:"required,min=1,max=100"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required,min=5,max=20"`
	Company          *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Website          *string `json:"website,omitempty" validate:"omitempty,max=300"`
	CountryCode      *string `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	CountryName      *string `json:"countryName,omitempty" validate:"omitempty,max=100"`
	State            *string `json:"state,omitempty" validate:"omitempty,max=100"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Source           *string `json:"source,omitempty" validate:"omitempty,max=200"`
	SourceChannel    *string `json:"sourceChannel,omitempty" validate:"omitempty,max=100"`
	UTMSource        *string `json:"utmSource,omitempty" validate:"omitempty,max=200"`
	UTMMedium        *string `json:"utmMedium,omitempty" validate:"omitempty,max=200"`
	UTMCampaign      *string `json:"utmCampaign,omitempty" validate:"omitempty,max=200"`
	UTMTerm          *string `json:"utmTerm,omitempty" validate:"omitempty,max=200"`
	UTMContent       *string `json:"utmContent,omitempty" validate:"omitempty,max=200"`
	ProgramInterest  *string `json:"programInterest,omitempty" validate:"omitempty,max=200"`
	ConsentMarketing bool    `json:"consentMarketing"`
	ConsentSales     bool    `json:"consentSales"`
}

type UpdateLeadRequest struct {
	FirstName       *string     `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName        *string     `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Phone           *string     `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Company         *string     `json:"company,omitempty" validate:"omitempty,max=200"`
	Website         *string     `json:"website,omitempty" validate:"omitempty,max=300"`
	CountryCode     *string     `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	State           *string     `json:"state,omitempty" validate:"omitempty,max=100"`
	City            *string     `json:"city,omitempty" validate:"omitempty,max=100"`
	Stage           *LeadStage  `json:"stage,omitempty" validate:"omitempty,oneof=inquiry application admitted enrolled"`
	Status          *LeadStatus `json:"status,omitempty" validate:"omitempty,oneof=new contacted qualified disqualified converted lost"`
	ProgramInterest *string     `json:"programInterest,omitempty" validate:"omitempty,max=200"`
	FollowupStatus  *string     `json:"followupStatus,omitempty" validate:"omitempty,max=100"`
	MarkContacted   bool        `json:"markContacted,omitempty"`
}

type AddEducationRequest struct {
	Institution    string   `json:"institution" validate:"required,min=1,max=200"`
	DegreeLevel    string   `json:"degreeLevel" validate:"required,oneof=phd masters bachelors diploma hs"`
	FieldOfStudy   *string  `json:"fieldOfStudy,omitempty" validate:"omitempty,max=200"`
	GPA            *float64 `json:"gpa,omitempty" validate:"omitempty,gte=0"`
	GPAScale       *float64 `json:"gpaScale,omitempty" validate:"omitempty,gt=0"`
	GraduationYear *int     `json:"graduationYear,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	IsHighest      bool     `json:"isHighest"`
}

type AddExperienceRequest struct {
	Company   string     `json:"company" validate:"required,min=1,max=200"`
	Title     string     `json:"title" validate:"required,min=1,max=200"`
	Industry  *string    `json:"industry,omitempty" validate:"omitempty,max=200"`
	StartDate time.Time  `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsCurrent bool       `json:"isCurrent"`
}

type AddTestScoreRequest struct {
	TestName   string     `json:"testName" validate:"required,min=1,max=100"`
	Score      float64    `json:"score" validate:"gte=0"`
	MaxScore   *float64   `json:"maxScore,omitempty" validate:"omitempty,gt=0"`
	Percentile *float64   `json:"percentile,omitempty" validate:"omitempty,gte=0,lte=100"`
	TakenAt    *time.Time `json:"takenAt,omitempty"`
}

// LeadResponse is the standard lead representation.
type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	OrganizationID    uuid.UUID  `json:"organizationId"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	PhoneE164         *string    `json:"phoneE164,omitempty"`
	Company           *string    `json:"company,omitempty"`
	Website           *string    `json:"website,omitempty"`
	CountryCode       *string    `json:"countryCode,omitempty"`
	CountryName       *string    `json:"countryName,omitempty"`
	State             *string    `json:"state,omitempty"`
	City              *string    `json:"city,omitempty"`
	Source            *string    `json:"source,omitempty"`
	SourceChannel     *string    `json:"sourceChannel,omitempty"`
	UTMSource         *string    `json:"utmSource,omitempty"`
	UTMMedium         *string    `json:"utmMedium,omitempty"`
	UTMCampaign       *string    `json:"utmCampaign,omitempty"`
	Stage             string     `json:"stage"`
	Status            string     `json:"status"`
	ProgramInterest   *string    `json:"programInterest,omitempty"`
	AcademicScore     int        `json:"academicScore"`
	ExperienceScore   int        `json:"experienceScore"`
	ProgramFitScore   int        `json:"programFitScore"`
	EngagementScore   int        `json:"engagementScore"`
	GeographyScore    int        `json:"geographyScore"`
	DataQualityScore  int        `json:"dataQualityScore"`
	LeadScore         int        `json:"leadScore"`
	Hotness           string     `json:"hotness"`
	LastScoredAt      *time.Time `json:"lastScoredAt,omitempty"`
	LastContactedAt   *time.Time `json:"lastContactedAt,omitempty"`
	AssignedCounselor *uuid.UUID `json:"assignedCounselor,omitempty"`
	AssignmentDate    *time.Time `json:"assignmentDate,omitempty"`
	FollowupStatus    string     `json:"followupStatus"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// LeadDetailResponse adds the profile collections used by the detail page.
type LeadDetailResponse struct {
	LeadResponse
	Education  []EducationResponse  `json:"education"`
	Experience []ExperienceResponse `json:"experience"`
	TestScores []TestScoreResponse  `json:"testScores"`
}

type EducationResponse struct {
	ID             uuid.UUID `json:"id"`
	Institution    string    `json:"institution"`
	DegreeLevel    string    `json:"degreeLevel"`
	FieldOfStudy   *string   `json:"fieldOfStudy,omitempty"`
	GPA            *float64  `json:"gpa,omitempty"`
	GPAScale       *float64  `json:"gpaScale,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty"`
	IsHighest      bool      `json:"isHighest"`
}

type ExperienceResponse struct {
	ID        uuid.UUID  `json:"id"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	Industry  *string    `json:"industry,omitempty"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	IsCurrent bool       `json:"isCurrent"`
}

type TestScoreResponse struct {
	ID         uuid.UUID  `json:"id"`
	TestName   string     `json:"testName"`
	Score      float64    `json:"score"`
	MaxScore   *float64   `json:"maxScore,omitempty"`
	Percentile *float64   `json:"percentile,omitempty"`
	TakenAt    *time.Time `json:"takenAt,omitempty"`
}

// ListLeadsResponse is a paginated lead collection.
type ListLeadsResponse struct {
	Leads  []LeadResponse `json:"leads"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
