package notifications

import (
	"bytes"
	"fmt"
	"text/template"
)

// Email is a rendered message ready for an EmailSender.
type Email struct {
	Subject string
	Body    string
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

func (t emailTemplate) render(data any) (Email, error) {
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return Email{}, fmt.Errorf("notifications: render subject: %w", err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return Email{}, fmt.Errorf("notifications: render body: %w", err)
	}
	return Email{Subject: subject.String(), Body: body.String()}, nil
}

var inquiryTemplate = mustTemplate("inquiry",
	`New {{.Kind}} inquiry from {{.Name}}`,
	`Name: {{.Name}}
Email: {{.Email}}
{{- if .Phone}}
Phone: {{.Phone}}{{end}}
{{- if .Company}}
Company: {{.Company}}{{end}}
{{- if .PropertyID}}
Property: {{.PropertyID}}{{end}}
{{- if not .CheckIn.IsZero}}
Stay: {{.CheckIn}} to {{.CheckOut}}{{if .Guests}}, {{.Guests}} guests{{end}}{{end}}
{{- if .Message}}

{{.Message}}{{end}}
`)

var bookingsTemplate = mustTemplate("bookings",
	`Bookings updated for {{.Name}}`,
	`The booking list of {{.Name}} ({{.PropertyID}}) was saved at {{.At.Format "2006-01-02 15:04 MST"}}.
It now holds {{.Bookings}} booking(s).
`)
