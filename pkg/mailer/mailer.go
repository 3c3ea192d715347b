package mailer

import (
	"fmt"
	"log"
	"time"

	"github.com/wneessen/go-mail"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=pkgmocks github.com/skyyield/skyyield/pkg/mailer Mailer

// Mailer is the interface for sending operational emails
type Mailer interface {
	// SendStageNotification notifies the operations inbox that a partner
	// reached a milestone stage (loi_signed, contract_signed, active)
	SendStageNotification(email, partnerCode, companyName, stage string) error
	// SendPurchaseRequestApproved notifies a partner that their device
	// purchase request was approved
	SendPurchaseRequestApproved(email, partnerCode string, quantity int) error
}

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	PortalURL    string
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{
		config: config,
	}
}

// NewTestSMTPMailer creates a mailer in test mode (won't connect to an SMTP server)
func NewTestSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		testMode: true,
	}
}

// SendStageNotification notifies the operations inbox of a pipeline milestone
func (m *SMTPMailer) SendStageNotification(email, partnerCode, companyName, stage string) error {
	subject := fmt.Sprintf("%s (%s) reached stage %s", companyName, partnerCode, stage)
	body := fmt.Sprintf(`
	<html>
		<body>
			<h1>Partner pipeline update</h1>
			<p>%s (%s) is now in stage <strong>%s</strong>.</p>
			<p><a href="%s/pipeline/partners/%s">Open in the portal</a></p>
		</body>
	</html>`, companyName, partnerCode, stage, m.config.PortalURL, partnerCode)

	return m.send(email, subject, body)
}

// SendPurchaseRequestApproved notifies a partner that their request was approved
func (m *SMTPMailer) SendPurchaseRequestApproved(email, partnerCode string, quantity int) error {
	subject := "Your SkyYield device purchase request was approved"
	body := fmt.Sprintf(`
	<html>
		<body>
			<h1>Purchase request approved</h1>
			<p>Your request for %d device(s) has been approved. We will follow up
			with ordering and shipping details.</p>
			<p><a href="%s/portal/%s/devices">Track your order</a></p>
		</body>
	</html>`, quantity, m.config.PortalURL, partnerCode)

	return m.send(email, subject, body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set email from address: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if m.testMode {
		log.Printf("test mode: skipping email to %s (%s)", to, subject)
		return nil
	}

	client, err := mail.NewClient(m.config.SMTPHost,
		mail.WithPort(m.config.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.SMTPUsername),
		mail.WithPassword(m.config.SMTPPassword),
		mail.WithTimeout(10*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
