package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"smilecare/internal/models"
)

const subject = "New Dental Appointment Booking"

var bodyTmpl = template.Must(template.New("booking").Parse(`<h3>New Appointment</h3>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Date:</strong> {{.Date}}</p>
<p><strong>Time:</strong> {{.Time}}</p>`))

// Config holds SMTP transport settings and the fixed addresses.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromName   string
	AdminEmail string
}

// Mailer sends one notification per booking to the administrator.
// No retry, no queuing.
type Mailer struct {
	dialer *gomail.Dialer
	cfg    Config
}

func New(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

// Notify sends the booking summary to the admin address. The context
// deadline bounds the SMTP exchange.
func (m *Mailer) Notify(ctx context.Context, b *models.Booking) error {
	body, err := renderBody(b)
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.Username, m.cfg.FromName)
	msg.SetHeader("To", m.cfg.AdminEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	// gomail has no context support; run the send aside and race the
	// deadline so a stuck SMTP server cannot stall the pipeline.
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send notification: %w", ctx.Err())
	}
}

func renderBody(b *models.Booking) (string, error) {
	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}
