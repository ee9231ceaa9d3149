// Package email delivers transactional mail for the CRM.
package email

import (
	"bytes"
	"context"
	"html/template"
)

// Sender delivers notification emails to counselors.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, counselorName, leadName, teamName, ruleName string) error
}

// NoopSender is used when SMTP is not configured. Sends succeed silently.
type NoopSender struct{}

func (NoopSender) SendLeadAssignedEmail(context.Context, string, string, string, string, string) error {
	return nil
}

const subjectLeadAssignedFmt = "New lead assigned: %s"

var leadAssignedTemplate = template.Must(template.New("lead_assigned").Parse(`
<html>
<body style="font-family: sans-serif; color: #1a1a2e;">
	<h2>New lead assigned</h2>
	<p>Hi {{.CounselorName}},</p>
	<p>The lead <strong>{{.LeadName}}</strong> has been assigned to you
	on team <strong>{{.TeamName}}</strong>{{if .RuleName}} via the rule
	<strong>{{.RuleName}}</strong>{{end}}.</p>
	<p>Please follow up within your team's response window.</p>
</body>
</html>`))

type leadAssignedData struct {
	CounselorName string
	LeadName      string
	TeamName      string
	RuleName      string
}

func renderLeadAssigned(data leadAssignedData) (string, error) {
	var buf bytes.Buffer
	if err := leadAssignedTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
