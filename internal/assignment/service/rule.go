package service

import (
	"strings"
	"time"

	"admissions_crm_backend/internal/assignment/repository"

	"github.com/google/uuid"
)

// Rule types.
const (
	RuleTypeGeography       = "geography"
	RuleTypeProgramInterest = "program_interest"
	RuleTypeLeadScore       = "lead_score"
	RuleTypeLoadBalancing   = "load_balancing"
)

// Condition is one assignment rule's predicate over a lead. Each rule type is
// a distinct variant; matching dispatches on the variant, not on strings.
type Condition interface {
	// Type returns the rule type tag for snapshots.
	Type() string
	// Matches evaluates the condition against the lead.
	Matches(lead repository.LeadRouting) bool
	// Audit records the evaluated values for the assignment snapshot.
	Audit(lead repository.LeadRouting) map[string]ConditionCheck
}

// ConditionCheck captures one evaluated condition for the audit snapshot.
type ConditionCheck struct {
	RuleValue interface{} `json:"rule_value"`
	LeadValue interface{} `json:"lead_value"`
	Matched   bool        `json:"matched"`
}

// GeographyCondition matches on case-insensitive country code equality. Both
// sides must be present.
type GeographyCondition struct {
	CountryCode string
}

func (c GeographyCondition) Type() string { return RuleTypeGeography }

func (c GeographyCondition) Matches(lead repository.LeadRouting) bool {
	if c.CountryCode == "" || lead.CountryCode == nil || *lead.CountryCode == "" {
		return false
	}
	return strings.EqualFold(*lead.CountryCode, c.CountryCode)
}

func (c GeographyCondition) Audit(lead repository.LeadRouting) map[string]ConditionCheck {
	var leadValue interface{}
	if lead.CountryCode != nil {
		leadValue = *lead.CountryCode
	}
	return map[string]ConditionCheck{
		"country_code": {RuleValue: c.CountryCode, LeadValue: leadValue, Matched: c.Matches(lead)},
	}
}

// ProgramInterestCondition matches on case-insensitive substring overlap in
// either direction. Both sides must be present.
type ProgramInterestCondition struct {
	Program string
}

func (c ProgramInterestCondition) Type() string { return RuleTypeProgramInterest }

func (c ProgramInterestCondition) Matches(lead repository.LeadRouting) bool {
	if c.Program == "" || lead.ProgramInterest == nil || *lead.ProgramInterest == "" {
		return false
	}
	interest := strings.ToLower(*lead.ProgramInterest)
	program := strings.ToLower(c.Program)
	return strings.Contains(interest, program) || strings.Contains(program, interest)
}

func (c ProgramInterestCondition) Audit(lead repository.LeadRouting) map[string]ConditionCheck {
	var leadValue interface{}
	if lead.ProgramInterest != nil {
		leadValue = *lead.ProgramInterest
	}
	return map[string]ConditionCheck{
		"program_interest": {RuleValue: c.Program, LeadValue: leadValue, Matched: c.Matches(lead)},
	}
}

// LeadScoreCondition matches when the lead's score reaches the rule's
// threshold. An absent threshold never matches.
type LeadScoreCondition struct {
	MinScore *float64
}

func (c LeadScoreCondition) Type() string { return RuleTypeLeadScore }

func (c LeadScoreCondition) Matches(lead repository.LeadRouting) bool {
	if c.MinScore == nil {
		return false
	}
	return float64(lead.LeadScore) >= *c.MinScore
}

func (c LeadScoreCondition) Audit(lead repository.LeadRouting) map[string]ConditionCheck {
	var ruleValue interface{}
	if c.MinScore != nil {
		ruleValue = *c.MinScore
	}
	return map[string]ConditionCheck{
		"lead_score": {RuleValue: ruleValue, LeadValue: lead.LeadScore, Matched: c.Matches(lead)},
	}
}

// LoadBalancingCondition matches unconditionally. It acts as a catch-all and
// belongs last by priority.
type LoadBalancingCondition struct{}

func (LoadBalancingCondition) Type() string { return RuleTypeLoadBalancing }

func (LoadBalancingCondition) Matches(repository.LeadRouting) bool { return true }

func (LoadBalancingCondition) Audit(repository.LeadRouting) map[string]ConditionCheck {
	return map[string]ConditionCheck{}
}

// conditionFor builds the condition variant for a stored rule row. Unknown
// rule types yield nil, which never matches.
func conditionFor(rule repository.Rule) Condition {
	switch rule.Type {
	case RuleTypeGeography:
		var code string
		if rule.CountryCode != nil {
			code = *rule.CountryCode
		}
		return GeographyCondition{CountryCode: code}
	case RuleTypeProgramInterest:
		var program string
		if rule.ProgramEquals != nil {
			program = *rule.ProgramEquals
		}
		return ProgramInterestCondition{Program: program}
	case RuleTypeLeadScore:
		return LeadScoreCondition{MinScore: rule.MinLeadScore}
	case RuleTypeLoadBalancing:
		return LoadBalancingCondition{}
	default:
		return nil
	}
}

// findMatchingRule walks the rules in their stored evaluation order and
// returns the first whose condition matches. Order is a hard precedence
// contract; this is not a best-match search.
func findMatchingRule(lead repository.LeadRouting, rules []repository.Rule) (repository.Rule, Condition, bool) {
	for _, rule := range rules {
		cond := conditionFor(rule)
		if cond == nil {
			continue
		}
		if cond.Matches(lead) {
			return rule, cond, true
		}
	}
	return repository.Rule{}, nil, false
}

// RuleSnapshot is the immutable JSON audit capture written with every
// rule-based assignment.
type RuleSnapshot struct {
	RuleID            uuid.UUID                 `json:"rule_id"`
	RuleName          string                    `json:"rule_name"`
	Type              string                    `json:"type"`
	Priority          int                       `json:"priority"`
	MatchedConditions map[string]ConditionCheck `json:"matched_conditions"`
	Timestamp         time.Time                 `json:"timestamp"`
}

// TeamRef identifies a team inside a snapshot.
type TeamRef struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
}

// ReassignmentSnapshot is the audit capture for a manual reassignment, which
// bypasses rule matching.
type ReassignmentSnapshot struct {
	Type              string     `json:"type"`
	Reason            string     `json:"reason"`
	PreviousCounselor *uuid.UUID `json:"previous_counselor"`
	PreviousTeam      *TeamRef   `json:"previous_team"`
	Timestamp         time.Time  `json:"timestamp"`
}
