package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"
)

// EmailConfig holds SMTP settings for the email sender.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// Email delivers an HTML message with a plain-text alternative over SMTP.
type Email struct {
	cfg  EmailConfig
	tmpl *template.Template
}

// NewEmail creates a sender with the given SMTP configuration.
func NewEmail(cfg EmailConfig) *Email {
	return &Email{
		cfg:  cfg,
		tmpl: template.Must(template.New("email").Funcs(template.FuncMap{"score": formatScore}).Parse(emailHTMLTemplate)),
	}
}

func (*Email) Name() string { return "email" }

type emailData struct {
	Title   string
	Text    string
	Summary *Summary
}

// Render builds the MIME message for msg.
func (e *Email) Render(msg Message) (*gomail.Message, error) {
	data := emailData{Title: msg.Title, Text: msg.Text, Summary: msg.Summary}
	if data.Summary != nil {
		sorted := *data.Summary
		sorted.Matches = sortedMatches(sorted.Matches)
		data.Summary = &sorted
	}
	var htmlBuf bytes.Buffer
	if err := e.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", e.cfg.To...)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", htmlBuf.String())
	return m, nil
}

func (e *Email) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := e.Render(msg)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	if e.cfg.Timeout > 0 {
		dialer.Timeout = e.cfg.Timeout
	}
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", strings.Join(e.cfg.To, ", "), err)
	}
	return nil
}
