package email

import (
	"strings"
	"testing"
)

func TestRenderLeadAssigned(t *testing.T) {
	content, err := renderLeadAssigned(leadAssignedData{
		CounselorName: "Dana Reyes",
		LeadName:      "Ada Lovelace",
		TeamName:      "Domestic",
		RuleName:      "us-leads",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Dana Reyes", "Ada Lovelace", "Domestic", "us-leads"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected rendered email to contain %q", want)
		}
	}
}

func TestRenderLeadAssigned_OmitsRuleClauseForReassignments(t *testing.T) {
	content, err := renderLeadAssigned(leadAssignedData{
		CounselorName: "Dana Reyes",
		LeadName:      "Ada Lovelace",
		TeamName:      "Domestic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(content, "via the rule") {
		t.Fatalf("expected rule clause to be omitted when no rule name is set")
	}
}

func TestRenderLeadAssigned_EscapesHTML(t *testing.T) {
	content, err := renderLeadAssigned(leadAssignedData{
		LeadName: `<script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(content, "<script>") {
		t.Fatalf("expected lead name to be escaped")
	}
}
