package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/core/port"
	"github.com/wayfare-dev/wayfare/internal/infra/config"
	"github.com/wayfare-dev/wayfare/internal/infra/logger"
)

// SMTPMailer delivers verification codes over plain SMTP.
type SMTPMailer struct {
	cfg     config.SMTPSettings
	appName string
}

// NewSMTPMailer constructs a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPSettings, appName string) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, appName: appName}
}

// SendVerificationCode sends the code to the recipient. The SMTP handshake is
// synchronous; callers decide whether delivery failure aborts their flow.
func (m *SMTPMailer) SendVerificationCode(_ context.Context, recipient, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	subject := fmt.Sprintf("%s - Verify Your Email Address", m.appName)
	body := fmt.Sprintf(
		"Hello,\n\nYour %s verification code is: %s\n\nThe code expires in 5 minutes. If you did not request it, ignore this email.\n",
		m.appName, code)

	headers := []string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", recipient),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}
	message := strings.Join(headers, "\r\n")

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(message)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	return nil
}

var _ port.Mailer = (*SMTPMailer)(nil)

// LoggingMailer logs codes instead of delivering them. Used in development
// environments without an SMTP relay.
type LoggingMailer struct {
	logger *zap.Logger
}

// NewLoggingMailer constructs a development-friendly mailer.
func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{logger: log}
}

// SendVerificationCode logs the masked recipient and the code.
func (m *LoggingMailer) SendVerificationCode(_ context.Context, recipient, code string) error {
	m.logger.Info("verification code issued",
		zap.String("recipient", logger.MaskEmail(recipient)),
		zap.String("code", code),
	)
	return nil
}

var _ port.Mailer = (*LoggingMailer)(nil)
