package email

import (
	"context"

	"healthscreen/internal/platform/smtp"
	"healthscreen/pkg/logger"
)

// Service sends notifications to a patient or doctor address.
type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	client *smtp.Client
}

// NewSMTPService sends through a real SMTP relay.
func NewSMTPService(client *smtp.Client) Service {
	return &smtpService{client: client}
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.client.Send(to, subject, content)
}

type dryRunService struct {
	log *logger.Logger
}

// NewDryRunService acknowledges every send without any real transport. This is
// the default: the product contract only requires a confirmation naming the
// destination address.
func NewDryRunService(log *logger.Logger) Service {
	return &dryRunService{log: log}
}

func (s *dryRunService) SendCustom(ctx context.Context, to, subject, content string) error {
	s.log.Info("dry-run email", "to", to, "subject", subject)
	return nil
}
