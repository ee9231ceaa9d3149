package service

import (
	"testing"

	"admissions_crm_backend/internal/assignment/repository"

	"github.com/google/uuid"
)

func strPtr(v string) *string   { return &v }
func f64Ptr(v float64) *float64 { return &v }

func routingLead(country, program string, score int) repository.LeadRouting {
	lead := repository.LeadRouting{LeadScore: score}
	if country != "" {
		lead.CountryCode = strPtr(country)
	}
	if program != "" {
		lead.ProgramInterest = strPtr(program)
	}
	return lead
}

func TestGeographyCondition_CaseInsensitiveEquality(t *testing.T) {
	cond := GeographyCondition{CountryCode: "US"}

	if !cond.Matches(routingLead("us", "", 0)) {
		t.Fatalf("expected case-insensitive match")
	}
	if cond.Matches(routingLead("CA", "", 0)) {
		t.Fatalf("expected mismatch for different country")
	}
	if cond.Matches(routingLead("", "", 0)) {
		t.Fatalf("expected no match when lead country is missing")
	}
	if (GeographyCondition{}).Matches(routingLead("US", "", 0)) {
		t.Fatalf("expected no match when rule country is empty")
	}
}

func TestProgramInterestCondition_BidirectionalSubstring(t *testing.T) {
	cond := ProgramInterestCondition{Program: "Business"}

	if !cond.Matches(routingLead("", "business administration", 0)) {
		t.Fatalf("expected lead interest containing rule program to match")
	}
	if !(ProgramInterestCondition{Program: "Business Administration"}).Matches(routingLead("", "business", 0)) {
		t.Fatalf("expected rule program containing lead interest to match")
	}
	if cond.Matches(routingLead("", "nursing", 0)) {
		t.Fatalf("expected unrelated interest not to match")
	}
	if cond.Matches(routingLead("", "", 0)) {
		t.Fatalf("expected no match when lead interest is missing")
	}
	if (ProgramInterestCondition{}).Matches(routingLead("", "business", 0)) {
		t.Fatalf("expected no match when rule program is empty")
	}
}

func TestLeadScoreCondition_Threshold(t *testing.T) {
	cond := LeadScoreCondition{MinScore: f64Ptr(60)}

	if !cond.Matches(routingLead("", "", 60)) {
		t.Fatalf("expected score at threshold to match")
	}
	if !cond.Matches(routingLead("", "", 75)) {
		t.Fatalf("expected score above threshold to match")
	}
	if cond.Matches(routingLead("", "", 59)) {
		t.Fatalf("expected score below threshold not to match")
	}
	if (LeadScoreCondition{}).Matches(routingLead("", "", 100)) {
		t.Fatalf("expected absent threshold never to match")
	}
}

func TestLoadBalancingCondition_AlwaysMatches(t *testing.T) {
	if !(LoadBalancingCondition{}).Matches(repository.LeadRouting{}) {
		t.Fatalf("expected load balancing rule to match any lead")
	}
}

func TestFindMatchingRule_FirstMatchWins(t *testing.T) {
	lead := routingLead("US", "business", 80)

	rules := []repository.Rule{
		{ID: uuid.New(), Name: "ca-leads", Type: RuleTypeGeography, Priority: 1, CountryCode: strPtr("CA")},
		{ID: uuid.New(), Name: "us-leads", Type: RuleTypeGeography, Priority: 2, CountryCode: strPtr("US")},
		{ID: uuid.New(), Name: "high-score", Type: RuleTypeLeadScore, Priority: 3, MinLeadScore: f64Ptr(50)},
	}

	rule, cond, found := findMatchingRule(lead, rules)
	if !found {
		t.Fatalf("expected a match")
	}
	if rule.Name != "us-leads" {
		t.Fatalf("expected first matching rule us-leads, got %s", rule.Name)
	}
	if cond.Type() != RuleTypeGeography {
		t.Fatalf("expected geography condition, got %s", cond.Type())
	}
}

func TestFindMatchingRule_SkipsUnknownTypes(t *testing.T) {
	lead := routingLead("US", "", 0)

	rules := []repository.Rule{
		{ID: uuid.New(), Name: "mystery", Type: "time_of_day", Priority: 1},
		{ID: uuid.New(), Name: "catch-all", Type: RuleTypeLoadBalancing, Priority: 2},
	}

	rule, _, found := findMatchingRule(lead, rules)
	if !found {
		t.Fatalf("expected catch-all to match")
	}
	if rule.Name != "catch-all" {
		t.Fatalf("expected unknown rule type skipped, got %s", rule.Name)
	}
}

func TestFindMatchingRule_NoMatch(t *testing.T) {
	lead := routingLead("DE", "", 10)

	rules := []repository.Rule{
		{ID: uuid.New(), Type: RuleTypeGeography, CountryCode: strPtr("US")},
		{ID: uuid.New(), Type: RuleTypeLeadScore, MinLeadScore: f64Ptr(50)},
	}

	if _, _, found := findMatchingRule(lead, rules); found {
		t.Fatalf("expected no rule to match")
	}
}

func TestConditionAudit_RecordsEvaluatedValues(t *testing.T) {
	lead := routingLead("US", "", 0)
	checks := GeographyCondition{CountryCode: "US"}.Audit(lead)

	check, ok := checks["country_code"]
	if !ok {
		t.Fatalf("expected country_code check in audit")
	}
	if check.RuleValue != "US" || check.LeadValue != "US" || !check.Matched {
		t.Fatalf("unexpected audit check: %+v", check)
	}

	missing := GeographyCondition{CountryCode: "US"}.Audit(repository.LeadRouting{})
	if missing["country_code"].LeadValue != nil {
		t.Fatalf("expected nil lead value for missing country")
	}
	if missing["country_code"].Matched {
		t.Fatalf("expected missing country not to match")
	}
}
