package utils

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer delivers password reset codes.
type Mailer interface {
	SendResetCode(email, code string) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.User,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
	}
}

func (m *SMTPMailer) SendResetCode(email, code string) error {
	msg, err := ResetCodeMessage(m.from, email, code)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "failed to send reset code email")
	}
	return nil
}

// LogMailer writes the delivery to the log instead of sending it. The code
// itself is only logged when Reveal is set.
type LogMailer struct {
	Log    zerolog.Logger
	Reveal bool
}

func (m LogMailer) SendResetCode(email, code string) error {
	ev := m.Log.Warn().Str("to", email)
	if m.Reveal {
		ev = ev.Str("code", code)
	}
	ev.Msg("SMTP is not configured; reset code not emailed")
	return nil
}

var resetCodeTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>Password Reset Code</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
		h1 { color: #333333; }
		p { color: #666666; }
		.code { font-weight: bold; color: #007bff; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Password Reset Code</h1>
		<p>Your password reset code is:</p>
		<p class="code">{{.}}</p>
		<p>If you did not request a password reset, please ignore this email.</p>
	</div>
</body>
</html>`))

// ResetCodeMessage builds the reset email with plain text and HTML bodies.
func ResetCodeMessage(from, to, code string) (*gomail.Message, error) {
	var html bytes.Buffer
	if err := resetCodeTemplate.Execute(&html, code); err != nil {
		return nil, errors.Wrap(err, "failed to render reset code email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Password Reset Code")
	m.SetBody("text/plain", "Your password reset code is: "+code)
	m.AddAlternative("text/html", html.String())
	return m, nil
}
