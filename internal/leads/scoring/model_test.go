package scoring

import (
	"os"
	"testing"
	"time"

	"admissions_crm_backend/internal/leads/repository"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func ptrString(v string) *string     { return &v }
func ptrFloat(v float64) *float64    { return &v }
func ptrTime(v time.Time) *time.Time { return &v }

func testModel() *Model {
	return NewModel(Default())
}

func education(level string, gpa, scale *float64, highest bool) repository.EducationRecord {
	return repository.EducationRecord{
		DegreeLevel: level,
		GPA:         gpa,
		GPAScale:    scale,
		IsHighest:   highest,
	}
}

func experienceYears(title string, years int, now time.Time) repository.ExperienceRecord {
	return repository.ExperienceRecord{
		Title:     title,
		StartDate: now.AddDate(-years, 0, 0),
	}
}

func TestAcademicScore_NoEducationIgnoresTestScores(t *testing.T) {
	m := testModel()
	scores := []repository.TestScoreRecord{{TestName: "GMAT", Score: 700, Percentile: ptrFloat(95)}}

	if got := m.AcademicScore(nil, scores); got != 0 {
		t.Fatalf("expected 0 without education records, got %d", got)
	}
}

func TestAcademicScore_DegreeLevels(t *testing.T) {
	m := testModel()
	cases := []struct {
		level string
		want  int
	}{
		{"phd", 30},
		{"masters", 25},
		{"bachelors", 20},
		{"diploma", 15},
		{"hs", 10},
		{"MASTERS", 25},
		{"unknown", 0},
	}

	for _, tc := range cases {
		got := m.AcademicScore([]repository.EducationRecord{education(tc.level, nil, nil, true)}, nil)
		if got != tc.want {
			t.Fatalf("level %q: expected %d, got %d", tc.level, tc.want, got)
		}
	}
}

func TestAcademicScore_GPABonusTiers(t *testing.T) {
	m := testModel()
	cases := []struct {
		gpa  float64
		want int
	}{
		{3.7, 25}, // 92.5% => +5
		{3.2, 23}, // 80% => +3
		{2.9, 21}, // 72.5% => +1
		{2.5, 20}, // 62.5% => no bonus
	}

	for _, tc := range cases {
		records := []repository.EducationRecord{education("bachelors", ptrFloat(tc.gpa), ptrFloat(4.0), true)}
		if got := m.AcademicScore(records, nil); got != tc.want {
			t.Fatalf("gpa %.1f: expected %d, got %d", tc.gpa, tc.want, got)
		}
	}
}

func TestAcademicScore_TestBonus(t *testing.T) {
	m := testModel()
	records := []repository.EducationRecord{education("diploma", nil, nil, true)}

	cases := []struct {
		percentile *float64
		want       int
	}{
		{ptrFloat(95), 23}, // 15 + 5 flat + 3
		{ptrFloat(85), 22}, // 15 + 5 flat + 2
		{ptrFloat(75), 21}, // 15 + 5 flat + 1
		{ptrFloat(50), 20}, // 15 + 5 flat
		{nil, 20},          // missing percentile treated as zero, flat bonus only
	}

	for i, tc := range cases {
		scores := []repository.TestScoreRecord{{TestName: "SAT", Score: 1200, Percentile: tc.percentile}}
		if got := m.AcademicScore(records, scores); got != tc.want {
			t.Fatalf("case %d: expected %d, got %d", i, tc.want, got)
		}
	}
}

func TestAcademicScore_CappedAtMax(t *testing.T) {
	m := testModel()
	records := []repository.EducationRecord{education("phd", ptrFloat(4.0), ptrFloat(4.0), true)}
	scores := []repository.TestScoreRecord{{TestName: "GRE", Score: 330, Percentile: ptrFloat(99)}}

	if got := m.AcademicScore(records, scores); got != maxAcademic {
		t.Fatalf("expected cap %d, got %d", maxAcademic, got)
	}
}

func TestAcademicScore_UsesHighestFlaggedRecord(t *testing.T) {
	m := testModel()
	records := []repository.EducationRecord{
		education("hs", nil, nil, false),
		education("masters", nil, nil, true),
	}

	if got := m.AcademicScore(records, nil); got != 25 {
		t.Fatalf("expected highest-flagged masters (25), got %d", got)
	}
}

func TestAcademicScore_FallsBackToFirstRecord(t *testing.T) {
	m := testModel()
	records := []repository.EducationRecord{
		education("bachelors", nil, nil, false),
		education("masters", nil, nil, false),
	}

	if got := m.AcademicScore(records, nil); got != 20 {
		t.Fatalf("expected first record bachelors (20), got %d", got)
	}
}

func TestExperienceScore_EmptyHistory(t *testing.T) {
	if got := testModel().ExperienceScore(nil, time.Now()); got != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got)
	}
}

func TestExperienceScore_TenureTiers(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		years int
		want  int
	}{
		{6, 10},
		{3, 7},
		{1, 5},
		{0, 3},
	}

	for _, tc := range cases {
		records := []repository.ExperienceRecord{experienceYears("accountant", tc.years, now)}
		if got := m.ExperienceScore(records, now); got != tc.want {
			t.Fatalf("%d years: expected %d, got %d", tc.years, tc.want, got)
		}
	}
}

func TestExperienceScore_RelevanceAndLeadershipBonusesCapped(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// 10 tenure + 15 relevance + 5 leadership = 30, capped to 25.
	records := []repository.ExperienceRecord{experienceYears("Senior Marketing Manager", 6, now)}
	if got := m.ExperienceScore(records, now); got != maxExperience {
		t.Fatalf("expected cap %d, got %d", maxExperience, got)
	}
}

func TestExperienceScore_AveragesAcrossRecords(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Record one: 30 points. Record two: 3 points. Average 16.5 rounds to 17.
	records := []repository.ExperienceRecord{
		experienceYears("Senior Marketing Manager", 6, now),
		experienceYears("intern", 0, now),
	}
	if got := m.ExperienceScore(records, now); got != 17 {
		t.Fatalf("expected averaged 17, got %d", got)
	}
}

func TestExperienceScore_ClosedRoleUsesEndDate(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	start := now.AddDate(-10, 0, 0)
	end := now.AddDate(-9, 0, 0)
	records := []repository.ExperienceRecord{{Title: "clerk", StartDate: start, EndDate: ptrTime(end)}}

	if got := m.ExperienceScore(records, now); got != 5 {
		t.Fatalf("expected one elapsed year (5), got %d", got)
	}
}

func TestProgramFitScore_NoInterest(t *testing.T) {
	m := testModel()
	if got := m.ProgramFitScore(nil, nil, nil); got != 0 {
		t.Fatalf("expected 0 without interest, got %d", got)
	}
	if got := m.ProgramFitScore(ptrString("   "), nil, nil); got != 0 {
		t.Fatalf("expected 0 for blank interest, got %d", got)
	}
}

func TestProgramFitScore_EducationFieldMatch(t *testing.T) {
	m := testModel()
	records := []repository.EducationRecord{{DegreeLevel: "bachelors", FieldOfStudy: ptrString("Business Administration")}}

	if got := m.ProgramFitScore(ptrString("business"), records, nil); got != 20 {
		t.Fatalf("expected education match 20, got %d", got)
	}
	// Overlap runs both directions.
	if got := m.ProgramFitScore(ptrString("Business Administration and Management"), records, nil); got != 20 {
		t.Fatalf("expected bidirectional match 20, got %d", got)
	}
}

func TestProgramFitScore_ExperienceMatch(t *testing.T) {
	m := testModel()
	byTitle := []repository.ExperienceRecord{{Title: "Nursing Assistant"}}
	byIndustry := []repository.ExperienceRecord{{Title: "Analyst", Industry: ptrString("Healthcare")}}

	if got := m.ProgramFitScore(ptrString("nursing"), nil, byTitle); got != 15 {
		t.Fatalf("expected title match 15, got %d", got)
	}
	if got := m.ProgramFitScore(ptrString("healthcare"), nil, byIndustry); got != 15 {
		t.Fatalf("expected industry match 15, got %d", got)
	}
}

func TestProgramFitScore_InterestOnlyFloor(t *testing.T) {
	m := testModel()
	if got := m.ProgramFitScore(ptrString("astrophysics"), nil, nil); got != 10 {
		t.Fatalf("expected interest-only floor 10, got %d", got)
	}
}

func TestEngagementScore_BaseAndPresenceBonuses(t *testing.T) {
	m := testModel()
	now := time.Now()

	if got := m.EngagementScore(repository.Lead{}, now); got != 10 {
		t.Fatalf("expected base 10, got %d", got)
	}

	lead := repository.Lead{
		PhoneE164: ptrString("+15551234567"),
		Company:   ptrString("Acme"),
		Website:   ptrString("https://acme.test"),
	}
	if got := m.EngagementScore(lead, now); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestEngagementScore_RecencyTiersAndCap(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		daysAgo int
		want    int
	}{
		{5, 13},
		{20, 12},
		{60, 11},
		{100, 10},
	}

	for _, tc := range cases {
		lead := repository.Lead{LastContactedAt: ptrTime(now.AddDate(0, 0, -tc.daysAgo))}
		if got := m.EngagementScore(lead, now); got != tc.want {
			t.Fatalf("%d days ago: expected %d, got %d", tc.daysAgo, tc.want, got)
		}
	}

	full := repository.Lead{
		PhoneE164:       ptrString("+15551234567"),
		Company:         ptrString("Acme"),
		Website:         ptrString("https://acme.test"),
		LastContactedAt: ptrTime(now.AddDate(0, 0, -1)),
	}
	if got := m.EngagementScore(full, now); got != maxEngagement {
		t.Fatalf("expected cap %d, got %d", maxEngagement, got)
	}
}

func TestGeographyScore_Tiers(t *testing.T) {
	m := testModel()
	cases := []struct {
		code *string
		want int
	}{
		{ptrString("US"), 15},
		{ptrString("gb"), 15},
		{ptrString("MX"), 10},
		{ptrString("DE"), 5},
		{ptrString(""), 0},
		{nil, 0},
	}

	for i, tc := range cases {
		if got := m.GeographyScore(tc.code); got != tc.want {
			t.Fatalf("case %d: expected %d, got %d", i, tc.want, got)
		}
	}
}

func TestDataQualityScore_ProportionalCredit(t *testing.T) {
	m := testModel()

	if got := m.DataQualityScore(repository.Lead{}); got != 0 {
		t.Fatalf("expected 0 for empty lead, got %d", got)
	}

	requiredOnly := repository.Lead{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Phone: "+15551234567",
	}
	if got := m.DataQualityScore(requiredOnly); got != 3 {
		t.Fatalf("expected 3 for complete required fields, got %d", got)
	}

	complete := requiredOnly
	complete.Company = ptrString("Acme")
	complete.Website = ptrString("https://acme.test")
	complete.CountryCode = ptrString("US")
	complete.City = ptrString("Boston")
	complete.State = ptrString("MA")
	if got := m.DataQualityScore(complete); got != maxDataQuality {
		t.Fatalf("expected %d for fully populated lead, got %d", maxDataQuality, got)
	}
}

func TestHotness_Thresholds(t *testing.T) {
	m := testModel()
	cases := []struct {
		total int
		want  string
	}{
		{70, HotnessHot},
		{85, HotnessHot},
		{69, HotnessWarm},
		{40, HotnessWarm},
		{39, HotnessCold},
		{0, HotnessCold},
	}

	for _, tc := range cases {
		if got := m.Hotness(tc.total); got != tc.want {
			t.Fatalf("total %d: expected %s, got %s", tc.total, tc.want, got)
		}
	}
}

func TestScore_TotalIsSumOfSubScores(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	lead := repository.Lead{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Phone: "+15551234567",
		PhoneE164:       ptrString("+15551234567"),
		Company:         ptrString("Acme"),
		Website:         ptrString("https://acme.test"),
		CountryCode:     ptrString("US"),
		City:            ptrString("Boston"),
		State:           ptrString("MA"),
		ProgramInterest: ptrString("business"),
		LastContactedAt: ptrTime(now.AddDate(0, 0, -2)),
	}
	edu := []repository.EducationRecord{education("masters", ptrFloat(3.8), ptrFloat(4.0), true)}
	edu[0].FieldOfStudy = ptrString("Business Administration")
	exp := []repository.ExperienceRecord{experienceYears("Marketing Director", 6, now)}

	b := m.Score(lead, edu, exp, nil, now)

	sum := b.Academic + b.Experience + b.ProgramFit + b.Engagement + b.Geography + b.DataQuality
	if b.Total != sum {
		t.Fatalf("expected total %d to equal sub-score sum %d", b.Total, sum)
	}
	// 30 + 25 + 20 + 15 + 15 + 5 = 110 of a theoretical 110; this lead maxes
	// every category.
	if b.Total != 110 {
		t.Fatalf("expected 110, got %d", b.Total)
	}
	if b.Hotness != HotnessHot {
		t.Fatalf("expected hot, got %s", b.Hotness)
	}
}

func TestScore_SparseFormFillStaysCold(t *testing.T) {
	m := testModel()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// A bare marketing-form submission: name, email, country, and a program
	// interest with no profile behind it.
	lead := repository.Lead{
		FirstName: "Ada", LastName: "Lovelace",
		Email:           "ada@example.com",
		CountryCode:     ptrString("US"),
		ProgramInterest: ptrString("MBA"),
	}

	b := m.Score(lead, nil, nil, nil, now)

	// 0 academic, 0 experience, 10 interest floor, 10 engagement base,
	// 15 geography, 3 data quality.
	if b.Total != 38 {
		t.Fatalf("expected 38, got %d", b.Total)
	}
	if b.Hotness != HotnessCold {
		t.Fatalf("expected cold, got %s", b.Hotness)
	}
}

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HotThreshold != 70 || cfg.WarmThreshold != 40 {
		t.Fatalf("expected default thresholds 70/40, got %d/%d", cfg.HotThreshold, cfg.WarmThreshold)
	}
	if cfg.DegreePoints["masters"] != 25 {
		t.Fatalf("expected masters=25, got %d", cfg.DegreePoints["masters"])
	}
}

func TestLoadConfig_OverridesAndValidates(t *testing.T) {
	dir := t.TempDir()

	path := dir + "/scoring.yaml"
	if err := writeFile(path, "hot_threshold: 80\nwarm_threshold: 50\n"); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HotThreshold != 80 || cfg.WarmThreshold != 50 {
		t.Fatalf("expected overridden thresholds 80/50, got %d/%d", cfg.HotThreshold, cfg.WarmThreshold)
	}
	// Unset keys keep their defaults.
	if len(cfg.TargetCountries) == 0 {
		t.Fatalf("expected default target countries to survive override")
	}

	bad := dir + "/bad.yaml"
	if err := writeFile(bad, "hot_threshold: 30\nwarm_threshold: 60\n"); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatalf("expected inverted thresholds to be rejected")
	}
}
