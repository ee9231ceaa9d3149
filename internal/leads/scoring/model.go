package scoring

import (
	"math"
	"strings"
	"time"

	"admissions_crm_backend/internal/leads/repository"
)

// Category caps. The sub-score maxima are fixed; only weights inside a
// category are configurable.
const (
	maxAcademic    = 30
	maxExperience  = 25
	maxProgramFit  = 20
	maxEngagement  = 15
	maxGeography   = 15
	maxDataQuality = 5
)

// Hotness tiers.
const (
	HotnessHot  = "hot"
	HotnessWarm = "warm"
	HotnessCold = "cold"
)

// Breakdown is the full result of one scoring run.
type Breakdown struct {
	Academic    int    `json:"academic_score"`
	Experience  int    `json:"experience_score"`
	ProgramFit  int    `json:"program_fit_score"`
	Engagement  int    `json:"engagement_score"`
	Geography   int    `json:"geography_score"`
	DataQuality int    `json:"data_quality_score"`
	Total       int    `json:"lead_score"`
	Hotness     string `json:"hotness_snapshot"`
}

// Model computes sub-scores from lead attributes and profile records. It is
// stateless apart from its configuration.
type Model struct {
	cfg Config
}

// NewModel creates a scoring model with the given configuration.
func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Score runs the full model at the given point in time.
func (m *Model) Score(
	lead repository.Lead,
	education []repository.EducationRecord,
	experience []repository.ExperienceRecord,
	testScores []repository.TestScoreRecord,
	now time.Time,
) Breakdown {
	b := Breakdown{
		Academic:    m.AcademicScore(education, testScores),
		Experience:  m.ExperienceScore(experience, now),
		ProgramFit:  m.ProgramFitScore(lead.ProgramInterest, education, experience),
		Engagement:  m.EngagementScore(lead, now),
		Geography:   m.GeographyScore(lead.CountryCode),
		DataQuality: m.DataQualityScore(lead),
	}
	b.Total = b.Academic + b.Experience + b.ProgramFit + b.Engagement + b.Geography + b.DataQuality
	b.Hotness = m.Hotness(b.Total)
	return b
}

// AcademicScore scores the highest education credential: base points by degree
// level, a GPA bonus, and a standardized-test bonus. No education records
// means zero, regardless of test scores.
func (m *Model) AcademicScore(education []repository.EducationRecord, testScores []repository.TestScoreRecord) int {
	highest := highestEducation(education)
	if highest == nil {
		return 0
	}

	score := m.cfg.DegreePoints[strings.ToLower(highest.DegreeLevel)]

	if highest.GPA != nil && highest.GPAScale != nil && *highest.GPAScale > 0 {
		switch pct := *highest.GPA / *highest.GPAScale * 100; {
		case pct >= 90:
			score += 5
		case pct >= 80:
			score += 3
		case pct >= 70:
			score += 1
		}
	}

	if best := bestTestScore(testScores); best != nil {
		score += 5
		switch pct := percentileOf(*best); {
		case pct >= 90:
			score += 3
		case pct >= 80:
			score += 2
		case pct >= 70:
			score += 1
		}
	}

	return min(score, maxAcademic)
}

// ExperienceScore scores each work history entry on tenure, relevance, and
// leadership, then averages across entries so several short stints do not
// outscore one long relevant role.
func (m *Model) ExperienceScore(experience []repository.ExperienceRecord, now time.Time) int {
	if len(experience) == 0 {
		return 0
	}

	total := 0.0
	for _, exp := range experience {
		switch years := yearsOfExperience(exp, now); {
		case years >= 5:
			total += 10
		case years >= 2:
			total += 7
		case years >= 1:
			total += 5
		default:
			total += 3
		}

		if m.isRelevant(exp) {
			total += 15
		}
		if m.isLeadershipTitle(exp.Title) {
			total += 5
		}
	}

	if len(experience) > 1 {
		total /= float64(len(experience))
	}

	return min(int(math.Round(total)), maxExperience)
}

// ProgramFitScore measures how well the lead's declared program interest lines
// up with their background: 20 for an education field match, 15 for an
// experience match, 10 as an interest-only floor. No interest means zero.
func (m *Model) ProgramFitScore(programInterest *string, education []repository.EducationRecord, experience []repository.ExperienceRecord) int {
	if programInterest == nil || strings.TrimSpace(*programInterest) == "" {
		return 0
	}
	program := strings.ToLower(strings.TrimSpace(*programInterest))

	score := 0
	for _, edu := range education {
		if edu.FieldOfStudy == nil {
			continue
		}
		if substringOverlap(strings.ToLower(*edu.FieldOfStudy), program) {
			score = maxProgramFit
			break
		}
	}

	if score == 0 {
		for _, exp := range experience {
			if substringOverlap(strings.ToLower(exp.Title), program) {
				score = 15
				break
			}
			if exp.Industry != nil && substringOverlap(strings.ToLower(*exp.Industry), program) {
				score = 15
				break
			}
		}
	}

	if score == 0 {
		score = 10
	}

	return min(score, maxProgramFit)
}

// EngagementScore starts from a base for the form submission and adds presence
// and contact-recency bonuses.
func (m *Model) EngagementScore(lead repository.Lead, now time.Time) int {
	score := 10

	if lead.PhoneE164 != nil && *lead.PhoneE164 != "" {
		score += 2
	}
	if lead.Company != nil && *lead.Company != "" {
		score += 2
	}
	if lead.Website != nil && *lead.Website != "" {
		score += 1
	}

	if lead.LastContactedAt != nil {
		switch days := int(now.Sub(*lead.LastContactedAt).Hours() / 24); {
		case days <= 7:
			score += 3
		case days <= 30:
			score += 2
		case days <= 90:
			score += 1
		}
	}

	return min(score, maxEngagement)
}

// GeographyScore tiers the lead's country against the configured target and
// nearby sets. Missing country scores zero.
func (m *Model) GeographyScore(countryCode *string) int {
	if countryCode == nil || *countryCode == "" {
		return 0
	}
	code := strings.ToUpper(*countryCode)

	if containsString(m.cfg.TargetCountries, code) {
		return maxGeography
	}
	if containsString(m.cfg.NearbyCountries, code) {
		return 10
	}
	return 5
}

// DataQualityScore gives proportional credit for filled profile fields:
// required fields weigh 3 points, optional fields 2.
func (m *Model) DataQualityScore(lead repository.Lead) int {
	required := []string{lead.FirstName, lead.LastName, lead.Email, lead.Phone}
	optional := []string{
		derefString(lead.Company),
		derefString(lead.Website),
		derefString(lead.CountryCode),
		derefString(lead.City),
		derefString(lead.State),
	}

	score := 3*fractionPresent(required) + 2*fractionPresent(optional)
	return min(int(math.Round(score)), maxDataQuality)
}

// Hotness classifies a total score into a tier.
func (m *Model) Hotness(total int) string {
	switch {
	case total >= m.cfg.HotThreshold:
		return HotnessHot
	case total >= m.cfg.WarmThreshold:
		return HotnessWarm
	default:
		return HotnessCold
	}
}

func (m *Model) isRelevant(exp repository.ExperienceRecord) bool {
	title := strings.ToLower(exp.Title)
	industry := ""
	if exp.Industry != nil {
		industry = strings.ToLower(*exp.Industry)
	}
	for _, keyword := range m.cfg.RelevanceKeywords {
		if strings.Contains(title, keyword) || (industry != "" && strings.Contains(industry, keyword)) {
			return true
		}
	}
	return false
}

func (m *Model) isLeadershipTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range m.cfg.LeadershipKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// highestEducation returns the record flagged is_highest, falling back to the
// first record.
func highestEducation(education []repository.EducationRecord) *repository.EducationRecord {
	if len(education) == 0 {
		return nil
	}
	for i := range education {
		if education[i].IsHighest {
			return &education[i]
		}
	}
	return &education[0]
}

// bestTestScore picks the record with the highest percentile, treating a
// missing percentile as zero.
func bestTestScore(testScores []repository.TestScoreRecord) *repository.TestScoreRecord {
	if len(testScores) == 0 {
		return nil
	}
	best := &testScores[0]
	for i := 1; i < len(testScores); i++ {
		if percentileOf(testScores[i]) > percentileOf(*best) {
			best = &testScores[i]
		}
	}
	return best
}

func percentileOf(rec repository.TestScoreRecord) float64 {
	if rec.Percentile == nil {
		return 0
	}
	return *rec.Percentile
}

// yearsOfExperience is whole elapsed years, open-ended roles counted to now.
func yearsOfExperience(exp repository.ExperienceRecord, now time.Time) int {
	end := now
	if exp.EndDate != nil {
		end = *exp.EndDate
	}
	if end.Before(exp.StartDate) {
		return 0
	}
	return int(end.Sub(exp.StartDate).Hours() / (24 * 365))
}

// substringOverlap reports whether either non-empty string contains the other.
func substringOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func fractionPresent(fields []string) float64 {
	present := 0
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			present++
		}
	}
	return float64(present) / float64(len(fields))
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
