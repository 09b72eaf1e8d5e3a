package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

//go:embed templates/*.html
var templatesFS embed.FS

var waitlistTmpl = template.Must(template.ParseFS(templatesFS, "templates/waitlist.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from, brand string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		Brand:    brand,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendWaitlistConfirmation(ctx context.Context, to, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.waitlistMessage(to, name)
	if err != nil {
		// template quebrado falha igual em qualquer retry
		return queue.Permanent(err)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) waitlistMessage(to, name string) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := waitlistTmpl.Execute(&body, WaitlistEmailData{Name: name, Brand: s.Brand}); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s, você está na lista de espera da %s", name, s.Brand))
	m.SetBody("text/html", body.String())
	return m, nil
}
