package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/dealdesk/backend/src/config"
	"github.com/username/dealdesk/backend/src/logger"
)

// NewEmailService selects the configured email provider. The demo flow has
// no real supplier mailboxes, so every mail goes to the operator's inbox
// with the supplier named in the subject line.
func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:            mg,
			senderEmail:   config.Cfg.SenderEmail,
			senderName:    config.Cfg.SenderName,
			operatorEmail: config.Cfg.OperatorEmail,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("SMTP configuration incomplete. Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		return &SMTPEmailService{
			SMTPServer:    config.Cfg.SMTPServer,
			SMTPPort:      config.Cfg.SMTPPort,
			SMTPUser:      config.Cfg.SMTPUser,
			SMTPPassword:  config.Cfg.SMTPPassword,
			SenderEmail:   config.Cfg.SenderEmail,
			OperatorEmail: config.Cfg.OperatorEmail,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

type SMTPEmailService struct {
	SMTPServer    string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SenderEmail   string
	OperatorEmail string
}

func (s *SMTPEmailService) SendNegotiationEmail(supplier, subject, body string) error {
	if s.OperatorEmail == "" {
		return fmt.Errorf("OPERATOR_EMAIL not configured, cannot send negotiation email")
	}
	from := s.SenderEmail
	to := []string{s.OperatorEmail}

	header := make(map[string]string)
	header["From"] = from
	header["To"] = s.OperatorEmail
	header["Subject"] = fmt.Sprintf("[%s] %s", supplier, subject)
	header["MIME-version"] = "1.0"
	header["Content-Type"] = "text/plain; charset=\"UTF-8\""
	message := ""
	for k, v := range header {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.SMTPUser, s.SMTPPassword, s.SMTPServer)
	addr := fmt.Sprintf("%s:%d", s.SMTPServer, s.SMTPPort)
	if err := smtp.SendMail(addr, auth, from, to, []byte(message)); err != nil {
		logger.L.Error("Failed to send negotiation email via SMTP", "error", err, "supplier", supplier)
		return fmt.Errorf("failed to send negotiation email via SMTP: %w", err)
	}
	logger.L.Info("Negotiation email sent successfully via SMTP", "supplier", supplier, "subject", subject)
	return nil
}

type MailgunEmailService struct {
	mg            mailgun.Mailgun
	senderEmail   string
	senderName    string
	operatorEmail string
}

func (s *MailgunEmailService) SendNegotiationEmail(supplier, subject, body string) error {
	if s.operatorEmail == "" {
		return fmt.Errorf("OPERATOR_EMAIL not configured, cannot send negotiation email")
	}
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	fullSubject := fmt.Sprintf("[%s] %s", supplier, subject)

	message := s.mg.NewMessage(from, fullSubject, body, s.operatorEmail)
	message.AddTag("negotiation")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send negotiation email via Mailgun", "error", err, "supplier", supplier, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Negotiation email sent successfully via Mailgun", "supplier", supplier, "subject", subject, "id", id)
	return nil
}

type MockEmailService struct{}

func (m *MockEmailService) SendNegotiationEmail(supplier, subject, body string) error {
	logger.L.Info("MockEmailService: Would send negotiation email.",
		"supplier", supplier, "subject", subject, "bodyLength", len(body))
	return nil
}
