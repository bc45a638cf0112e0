package auth

import (
	"fmt"
	"net/smtp"

	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/config"
	"github.com/JeanEstrada-2004/SafeData-Intelligence/pkg/logger"
	"go.uber.org/zap"
)

// Mailer sends account emails.
type Mailer interface {
	SendPasswordResetEmail(to, resetURL string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordResetEmail mails the reset link. With SMTP disabled the
// link is logged instead, which keeps local environments usable.
func (m *SMTPMailer) SendPasswordResetEmail(to, resetURL string) error {
	if !m.cfg.Enabled {
		logger.Info("smtp disabled, password reset link not mailed",
			zap.String("to", to),
			zap.String("reset_url", resetURL))
		return nil
	}

	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	htmlBody := fmt.Sprintf(`<html><body>
<p>Has solicitado restablecer tu contraseña.</p>
<p>Haz clic en el siguiente enlace (válido por 24 horas):<br/>
<a href="%s">%s</a></p>
<p>Si no solicitaste este cambio, ignora este correo.</p>
</body></html>`, resetURL, resetURL)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: Recuperación de contraseña — SafeData Intelligence\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", from, to, htmlBody))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
