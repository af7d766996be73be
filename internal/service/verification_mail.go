package service

import (
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const verificationSubject = "Your verification code"

var verificationBody = template.Must(template.New("verification").Parse(`<p>Hi {{.Name}},</p>
<p>Your verification code is:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:6px">{{.Code}}</p>
<p>Enter it on the verification page to activate your account.</p>
`))

// Mailer sends the current verification code of a user to their address.
type Mailer interface {
	SendVerificationCode(ctx context.Context, u *model.User) error
}

// NewMailer picks the mailer for the configured driver
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Driver {
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "log":
		return &LogMailer{From: cfg.Sender}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
}

type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.Sender,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := verificationMessage(m.from, u)
	if err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail, %w", err)
	}

	return nil
}

func verificationMessage(from string, u *model.User) (*gomail.Message, error) {
	if u.VerificationCode == nil {
		return nil, errors.New("user has no verification code")
	}

	if u.Email == from {
		return nil, errors.New("invalid email address")
	}

	var body bytes.Buffer
	err := verificationBody.Execute(&body, map[string]string{
		"Name": u.Name,
		"Code": *u.VerificationCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render verification mail, %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", u.Email)
	m.SetHeader("Subject", verificationSubject)
	m.SetBody("text/html", body.String())

	return m, nil
}

// LogMailer writes the code to the log instead of sending it. Meant for
// local development.
type LogMailer struct {
	From string
}

func (m *LogMailer) SendVerificationCode(_ context.Context, u *model.User) error {
	if _, err := verificationMessage(m.From, u); err != nil {
		return err
	}

	zap.L().Info("Verification code",
		zap.String("from", m.From),
		zap.String("to", u.Email),
		zap.String("userID", u.ID),
		zap.String("code", *u.VerificationCode))

	return nil
}
