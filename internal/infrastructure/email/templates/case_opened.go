// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// CaseOpenedEmailProps carries the fields rendered into the case-opened
// notification.
type CaseOpenedEmailProps struct {
	CaseID       string
	LeadCkt      string
	CustName     string
	IPAddress    string
	Connectivity string
	DueDate      string
	Remarks      string
	CreatedBy    string
}

var caseOpenedTemplate = template.Must(template.New("caseOpenedEmail").Parse(`
    <p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">A new support case has been opened.</p>
    <table role="presentation" border="0" cellpadding="4" cellspacing="0" style="border-collapse: collapse; width: 100%; font-family: Helvetica, sans-serif; font-size: 14px; margin-bottom: 16px;">
      <tr><td style="color: #9a9ea6; width: 140px;">Case</td><td>{{.CaseID}}</td></tr>
      <tr><td style="color: #9a9ea6;">Circuit</td><td>{{.LeadCkt}}</td></tr>
      {{if .CustName}}<tr><td style="color: #9a9ea6;">Customer</td><td>{{.CustName}}</td></tr>{{end}}
      <tr><td style="color: #9a9ea6;">IP address</td><td>{{.IPAddress}}</td></tr>
      <tr><td style="color: #9a9ea6;">Connectivity</td><td>{{.Connectivity}}</td></tr>
      <tr><td style="color: #9a9ea6;">Due</td><td>{{.DueDate}}</td></tr>
      {{if .Remarks}}<tr><td style="color: #9a9ea6;">Remarks</td><td>{{.Remarks}}</td></tr>{{end}}
      {{if .CreatedBy}}<tr><td style="color: #9a9ea6;">Opened by</td><td>{{.CreatedBy}}</td></tr>{{end}}
    </table>
    <p style="font-family: Helvetica, sans-serif; font-size: 14px; color: #9a9ea6; margin: 0;">This notification was generated automatically when the case was created.</p>`))

// GetCaseOpenedEmailContent renders the case-opened notification body.
func GetCaseOpenedEmailContent(props CaseOpenedEmailProps) string {
	var buf bytes.Buffer
	if err := caseOpenedTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing case opened email template: %v", err)
		return "<p>Template execution error</p>"
	}
	return buf.String()
}
