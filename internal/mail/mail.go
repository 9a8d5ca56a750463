// Package mail dispatches account emails over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"

	"github.com/kiranshivaraju/crisisapi/internal/config"
	"github.com/valyala/fasttemplate"
	"gopkg.in/gomail.v2"
)

// ErrDispatch wraps every failure to hand a message to the transport.
var ErrDispatch = errors.New("mail dispatch failed")

const verificationSubject = "Please verify your email address"

const verificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h1>Welcome to the Crisis Data API</h1>
  <p>Confirm your email address to activate your account:</p>
  <p><a href="{{url}}">Verify my email</a></p>
  <p>If the button does not work, copy this link into your browser:<br>{{url}}</p>
</body>
</html>`

// Mailer sends account emails.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
}

// Sender is the transport used by SMTPMailer. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer implements Mailer on top of gomail.
type SMTPMailer struct {
	sender  Sender
	from    string
	baseURL string
	tmpl    *fasttemplate.Template
}

// NewSMTPMailer builds a mailer that dials the configured SMTP server.
func NewSMTPMailer(cfg config.MailConfig, baseURL string) *SMTPMailer {
	return NewMailer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, baseURL)
}

// NewMailer builds a mailer on an arbitrary transport.
func NewMailer(sender Sender, from, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		sender:  sender,
		from:    from,
		baseURL: baseURL,
		tmpl:    fasttemplate.New(verificationTemplate, "{{", "}}"),
	}
}

// SendVerification mails the account confirmation link embedding token.
func (m *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	link := VerificationURL(m.baseURL, token)
	body := m.tmpl.ExecuteString(map[string]any{"url": html.EscapeString(link)})

	msg := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", verificationSubject)
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return nil
}

// VerificationURL returns the absolute link that consumes token.
func VerificationURL(baseURL, token string) string {
	return baseURL + "/email-verify?token=" + url.QueryEscape(token)
}
