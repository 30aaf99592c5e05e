// Package notify sends user-facing emails and runs the daily bill-reminder
// job.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/pulse-finance/pulse/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, log *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, log: log}
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.log.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

// SendBillReminder sends an upcoming-bill reminder email
func (s *Sender) SendBillReminder(to, username, billName string, amount float64, daysUntil int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming Bill Reminder"

	var when string
	switch daysUntil {
	case 0:
		when = "today"
	case 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", daysUntil)
	}

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that your bill %s ($%.2f) is due %s.\n"+
			"Please make sure your balance covers it.\n"+
			"\nBest regards,\nPulse",
		username, billName, amount, when,
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendBalanceVerified sends a notification that the account balance was
// updated by the user
func (s *Sender) SendBalanceVerified(to, username string, balance float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Balance Verified"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your account balance was updated to $%.2f on %s.\n"+
			"If this wasn't you, please change your password.\n"+
			"\nBest regards,\nPulse",
		username, balance, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	return s.send(e)
}
