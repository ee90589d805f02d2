package services

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"go.uber.org/zap"
)

// MailService sends transactional email over SMTP. It disables itself when
// the SMTP environment is not configured, so local development works without
// a mail server.
type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool

	logger *zap.SugaredLogger
}

func NewMailService(logger *zap.SugaredLogger) *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		logger.Warn("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
		logger:   logger,
	}
}

// SendPasswordReset mails the reset link for token to the given address.
func (s *MailService) SendPasswordReset(to, link string) {
	body := fmt.Sprintf(`<p>Someone requested a password reset for this address.</p>
<p><a href="%s">Reset password</a> (the link expires in one hour)</p>
<p>If this wasn't you, ignore this mail.</p>`, link)
	s.sendAsync([]string{to}, "Reset your password", body)
}

func (s *MailService) sendAsync(to []string, subject, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Updoot <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			s.logger.Errorw("mail send failed", "to", to, "subject", subject, "error", err)
		}
	}()
}
