package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	return s.send(ctx, domain.EmailRegistrationConfirmation, data.Email, data)
}

func (s *emailService) SendModerationDecision(ctx context.Context, data *domain.ModerationEmailData) error {
	if data == nil {
		return fmt.Errorf("moderation email data is nil")
	}
	return s.send(ctx, domain.EmailModerationDecision, data.Email, data)
}

func (s *emailService) send(ctx context.Context, template domain.EmailTemplate, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}

// notify runs a best-effort email send. Failures are logged and never reach the caller.
func notify(ctx context.Context, logger *slog.Logger, send func(context.Context) error) {
	if err := send(ctx); err != nil {
		logger.WarnContext(ctx, "email notification failed", "err", err)
	}
}
