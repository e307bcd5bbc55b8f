package notify

import (
	"bytes"
	"html/template"

	"github.com/cockroachdb/errors"
)

const layout = `<div style="max-width: 500px; font-family: Arial, sans-serif; border: 1px solid #ddd;">
<div style="background: #006CAC; padding: 10px; text-align: center;">
<span style="color: #fff; font-size: 24px; font-weight: 600;">Job Portal</span>
</div>
<div style="padding: 20px 5px; background-color: #e8e8e8;">
{{template "content" .}}
<p>If you encounter any issues or have any questions, please contact our support team.</p>
<p><strong style="color: orange;">Important Note:</strong> {{template "note" .}}</p>
</div>
</div>`

var templates = map[string]*template.Template{
	"application_received": mustTemplate(
		`{{define "content"}}<p>A new application was received for {{.JobTitle}} from {{.CandidateName}}.</p>{{end}}`+
			`{{define "note"}}If you did not create this job, please ignore this email.{{end}}`),
	"status_updated": mustTemplate(
		`{{define "content"}}<p>Your application for {{.JobTitle}} is now {{.StatusName}}.</p>{{end}}`+
			`{{define "note"}}If you did not apply for this job, please ignore this email.{{end}}`),
	"job_match": mustTemplate(
		`{{define "content"}}<p>A new job matching your preferences was posted: {{.JobTitle}} at {{.CompanyName}} in {{.Location}}.</p>{{end}}`+
			`{{define "note"}}You receive this because of a saved job preference.{{end}}`),
}

func mustTemplate(blocks string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(blocks))
}

// MailData fills the portal mail templates.
type MailData struct {
	JobTitle      string
	CompanyName   string
	Location      string
	CandidateName string
	StatusName    string
}

func render(name string, data MailData) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", errors.Newf("unknown mail template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return buf.String(), nil
}

// ApplicationReceived is sent to the employer when a candidate applies.
func ApplicationReceived(toAddress, toName string, data MailData) (Message, error) {
	body, err := render("application_received", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   "Application Received for " + data.JobTitle,
		HTMLBody:  body,
	}, nil
}

// StatusUpdated is sent to the candidate when an employer moves the application.
func StatusUpdated(toAddress, toName string, data MailData) (Message, error) {
	body, err := render("status_updated", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   "Application status updated",
		HTMLBody:  body,
	}, nil
}

// JobMatch is sent to a candidate whose preference matches a new job.
func JobMatch(toAddress, toName string, data MailData) (Message, error) {
	body, err := render("job_match", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ToAddress: toAddress,
		ToName:    toName,
		Subject:   "New job matching your preferences: " + data.JobTitle,
		HTMLBody:  body,
	}, nil
}
