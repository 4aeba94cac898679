package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplate names a transactional email. Each one ships a subject, an HTML and a text body.
type EmailTemplate string

const (
	// EmailRegistrationConfirmation is rendered with *RegistrationEmailData.
	EmailRegistrationConfirmation EmailTemplate = "registration_confirmation"
	// EmailModerationDecision is rendered with *ModerationEmailData.
	EmailModerationDecision EmailTemplate = "moderation_decision"
)

// EmailTemplates lists every template the renderer must provide.
var EmailTemplates = []EmailTemplate{EmailRegistrationConfirmation, EmailModerationDecision}

// EmailTemplateRenderer renders email content from a template with the given data.
type EmailTemplateRenderer interface {
	Render(tmpl EmailTemplate, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for the registration confirmation email.
type RegistrationEmailData struct {
	Email       string
	Name        string
	EventTitle  string
	EventDate   string
	Location    string
	TicketToken string
}

// ModerationEmailData holds data for the moderation decision email sent to organizers.
type ModerationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Status     EventStatus
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendModerationDecision(ctx context.Context, data *ModerationEmailData) error
}
