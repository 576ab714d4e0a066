// Package email delivers transactional mail for account flows.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/mail"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/config"
)

// Service renders and sends account emails. When the config disables email
// it logs the would-be message instead of sending, which keeps local
// development working without an API key.
type Service struct {
	config config.EmailConfig
	client *resend.Client
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if _, err := mail.ParseAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("email enabled but RESEND_API_KEY is empty")
		}
	}

	svc := &Service{
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.client = resend.NewClient(cfg.APIKey)
	}
	return svc, nil
}

// SendVerification mails the account-verification link to a new user.
func (s *Service) SendVerification(to, link string) error {
	body, err := render(verificationTemplate, map[string]string{"Link": link})
	if err != nil {
		return err
	}
	return s.send(to, "Bushfire Beacon - Verify your account", body)
}

// SendPasswordReset mails a password-recovery link.
func (s *Service) SendPasswordReset(to, link string) error {
	body, err := render(passwordResetTemplate, map[string]string{"Link": link})
	if err != nil {
		return err
	}
	return s.send(to, "Bushfire Beacon - Password recovery", body)
}

// SendWelcome mails the post-verification welcome note.
func (s *Service) SendWelcome(to, name string) error {
	body, err := render(welcomeTemplate, map[string]string{"Name": name})
	if err != nil {
		return err
	}
	return s.send(to, "Welcome to Bushfire Beacon", body)
}

func (s *Service) send(to, subject, htmlBody string) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("subject", subject).
			Msg("email sending disabled, skipping")
		return nil
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	sent, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info().
		Str("email_id", sent.Id).
		Str("to", to).
		Str("subject", subject).
		Msg("email sent")
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<p>Thanks for signing up for Bushfire Beacon.</p>
<p>Confirm your account by opening this link:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires soon. If you did not sign up, ignore this message.</p>
`))

var passwordResetTemplate = template.Must(template.New("reset").Parse(`
<p>A password reset was requested for your Bushfire Beacon account.</p>
<p>Set a new password here:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this, ignore this message.</p>
`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<p>Welcome{{if .Name}}, {{.Name}}{{end}}!</p>
<p>Your Bushfire Beacon account is verified and ready to use.</p>
`))
