// ABOUTME: SMTP email notifier built on go-mail
// ABOUTME: Sends a multipart (text + HTML) message per alert, or one digest per batch, with a bounded timeout
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/harper/pricewatch/internal/models"
)

// EmailConfig holds SMTP settings
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// Configured reports whether every setting needed to send is present
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.To != ""
}

// EmailNotifier sends alerts by email
type EmailNotifier struct {
	cfg  EmailConfig
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewEmailNotifier creates an email notifier. An unconfigured notifier is
// valid; every Send then returns a DeliveryError.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	n := &EmailNotifier{cfg: cfg}
	n.send = n.dialAndSend
	return n
}

// Send delivers one alert
func (n *EmailNotifier) Send(ctx context.Context, alert *models.Alert, item *models.Item) error {
	return n.deliver(ctx, func() (*mail.Msg, error) {
		text, html, err := renderBodies(alert, item)
		if err != nil {
			return nil, fmt.Errorf("render email: %w", err)
		}
		return n.newMessage(fmt.Sprintf("Price Alert: %s", item.DisplayName()), text, html)
	})
}

// SendBatch delivers several alerts as a single digest email
func (n *EmailNotifier) SendBatch(ctx context.Context, deliveries []Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	return n.deliver(ctx, func() (*mail.Msg, error) {
		text, html, err := renderDigest(deliveries)
		if err != nil {
			return nil, fmt.Errorf("render digest: %w", err)
		}
		return n.newMessage(fmt.Sprintf("%d New Price Alerts", len(deliveries)), text, html)
	})
}

// deliver builds and sends a message. Panics from the transport are turned
// into a DeliveryError.
func (n *EmailNotifier) deliver(ctx context.Context, build func() (*mail.Msg, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DeliveryError{Channel: "email", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if !n.cfg.Configured() {
		return &DeliveryError{Channel: "email", Err: ErrNotConfigured}
	}

	msg, err := build()
	if err != nil {
		return &DeliveryError{Channel: "email", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()
	if err := n.send(ctx, msg); err != nil {
		return &DeliveryError{Channel: "email", Err: err}
	}
	return nil
}

func (n *EmailNotifier) newMessage(subject, text, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(n.cfg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)
	return msg, nil
}

func (n *EmailNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(n.cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// FormatPrice renders an amount in dollars
func FormatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
