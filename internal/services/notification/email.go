package notification

import (
	"bytes"
	"context"
	"html/template"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer sends an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return m.dialer.DialAndSend(msg)
}

// LogMailer only logs, for environments without SMTP.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, html string) error {
	log.Printf("email to %s: %s", to, subject)
	return nil
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>{{.Title}}</h2>
  <p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
  <p>{{.Body}}</p>
  <p style="color: #6b7280; font-size: 12px;">Fintrivox</p>
</body>
</html>
`))

// RenderEmail renders the standard email layout. Values are HTML escaped.
func RenderEmail(name, title, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Name, Title, Body string
	}{name, title, body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
