package mailer

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"voluntariado-backend/models"
	"voluntariado-backend/utils/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	defaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

// Mailer sends one transactional e-mail
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// New returns the SendGrid mailer when an API key is configured and a
// logging mailer otherwise
func New(cfg *models.Config, log logger.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Info("SendGrid API key not configured, e-mails are only logged")
		return &LogMailer{logger: log}
	}
	return NewSendGridMailer(cfg, log)
}

// SendGridMailer delivers mail through the SendGrid v3 API
type SendGridMailer struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
	logger     logger.Logger
}

func NewSendGridMailer(cfg *models.Config, log logger.Logger) *SendGridMailer {
	return &SendGridMailer{
		key:        cfg.SendGridAPIKey,
		host:       defaultHost,
		from:       sgmail.NewEmail(cfg.MailFromName, cfg.MailFromEmail),
		subjPrefix: "[" + cfg.AppName + "] ",
		logger:     log,
	}
}

func (m *SendGridMailer) prepare(toEmail, toName, subject, body string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + subject
	p.AddTos(sgmail.NewEmail(toName, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", body),
		sgmail.NewContent("text/html", toHTML(body)),
	)
	return msg
}

// Send posts the message; SendGrid answers 202 when it accepted it
func (m *SendGridMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(m.key, endpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(toEmail, toName, subject, body))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", toEmail, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email to %s: status %d: %s", toEmail, res.StatusCode, res.Body)
	}
	m.logger.Debugf("Email %q sent to %s", subject, toEmail)
	return nil
}

// LogMailer writes the messages to the log, for local runs
type LogMailer struct {
	logger logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	m.logger.Infof("Email to %s <%s>: %s", toName, toEmail, subject)
	return nil
}

func toHTML(body string) string {
	paragraphs := strings.Split(html.EscapeString(body), "\n\n")
	for i, p := range paragraphs {
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>"
	}
	return strings.Join(paragraphs, "")
}
