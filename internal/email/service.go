package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/triage-api/internal/model"
)

type Service interface {
	SendResupplyAlert(ctx context.Context, resource *model.Resource) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer Dialer
	from   string
	to     []string
}

// NewService returns an SMTP notifier, or a no-op one when no host or recipient is configured.
func NewService(cfg Config) Service {
	if cfg.Host == "" || len(cfg.To) == 0 {
		return NopService{}
	}
	return NewServiceWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, cfg.To)
}

func NewServiceWithDialer(d Dialer, from string, to []string) Service {
	return &smtpService{dialer: d, from: from, to: to}
}

func (s *smtpService) SendResupplyAlert(ctx context.Context, resource *model.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", fmt.Sprintf("Resupply needed: %s", resource.ResourceType))
	m.SetBody("text/plain", resupplyBody(resource))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send resupply alert: %w", err)
	}
	return nil
}

func resupplyBody(r *model.Resource) string {
	location := "unspecified"
	if r.Location != nil && *r.Location != "" {
		location = *r.Location
	}
	return fmt.Sprintf(
		"%s stock is %d, at or below the critical level of %d.\nLocation: %s\nUpdated: %s\n",
		r.ResourceType, r.CurrentStock, r.CriticalLevel, location, r.LastUpdated.Format("2006-01-02 15:04:05 MST"),
	)
}

// NopService drops every alert.
type NopService struct{}

func (NopService) SendResupplyAlert(context.Context, *model.Resource) error {
	return nil
}
