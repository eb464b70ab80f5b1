package mailer

import (
	"bytes"
	"html/template"
	"time"
)

// Templates go through html/template, so every interpolated value is
// escaped for its HTML context.

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">New Contact Form Submission</h2>
  <div style="background-color: #f3f4f6; padding: 16px; border-radius: 8px; margin: 16px 0;">
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
  </div>
  <div style="background-color: #f9fafb; padding: 16px; border-left: 4px solid #2563eb; margin: 16px 0;">
    <h3 style="margin-top: 0; color: #1f2937;">Message:</h3>
    <p style="white-space: pre-wrap; word-wrap: break-word;">{{.Message}}</p>
  </div>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
  <p style="color: #6b7280; font-size: 12px;">
    This email was sent from SWASTH SATHI contact form.<br/>
    <strong>Reply to:</strong> {{.Email}}
  </p>
</div>
`))

var contactAcknowledgementTmpl = template.Must(template.New("contact_acknowledgement").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Thank You, {{.Name}}!</h2>
  <p>We have received your message and appreciate you reaching out to SWASTH SATHI.</p>
  <div style="background-color: #f3f4f6; padding: 16px; border-radius: 8px; margin: 16px 0;">
    <p><strong>Your Message:</strong></p>
    <p style="white-space: pre-wrap; word-wrap: break-word; color: #4b5563;">{{.Message}}</p>
  </div>
  <p>Our team will review your message and get back to you as soon as possible at <strong>{{.Email}}</strong>.</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
  <p style="color: #6b7280; font-size: 12px;">
    <strong>SWASTH SATHI</strong> - Empowering Communities with AI-Driven Health Information<br/>
    &copy; {{.Year}} All rights reserved.
  </p>
</div>
`))

var oneTimeCodeTmpl = template.Must(template.New("one_time_code").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">{{.Heading}}</h2>
  <p>Use this code to continue. It expires in {{.ValidMinutes}} minutes.</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
  <p style="color: #6b7280; font-size: 12px;">If you did not request this, you can ignore this email.</p>
</div>
`))

type ContactData struct {
	Name    string
	Email   string
	Subject string
	Message string
	Year    int
}

type OneTimeCodeData struct {
	Heading      string
	Code         string
	ValidMinutes int
}

func RenderContactNotification(data ContactData) (string, error) {
	return render(contactNotificationTmpl, data)
}

func RenderContactAcknowledgement(data ContactData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	return render(contactAcknowledgementTmpl, data)
}

func RenderOneTimeCode(data OneTimeCodeData) (string, error) {
	return render(oneTimeCodeTmpl, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
