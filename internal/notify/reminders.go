package notify

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pulse-finance/pulse/internal/advisor"
	"github.com/pulse-finance/pulse/internal/models"
)

// reminderWindowDays is how close a bill's due day must be before the daily
// job emails a reminder.
const reminderWindowDays = 3

// BillStore lists users and their bills for the reminder scan.
type BillStore interface {
	ListUsers() ([]models.User, error)
	ListBills(userID int64) ([]models.BillEntry, error)
}

// ReminderSender sends a single bill reminder. Implemented by Sender.
type ReminderSender interface {
	SendBillReminder(to, username, billName string, amount float64, daysUntil int) error
}

// Reminder scans all users' bills once a day and emails reminders for bills
// due soon. Failures are logged and never abort the scan.
type Reminder struct {
	store  BillStore
	sender ReminderSender
	log    *logrus.Logger
}

// NewReminder creates the daily reminder job
func NewReminder(store BillStore, sender ReminderSender, log *logrus.Logger) *Reminder {
	return &Reminder{store: store, sender: sender, log: log}
}

// Run performs one reminder scan using today's day of month
func (r *Reminder) Run() {
	r.run(time.Now().Day())
}

func (r *Reminder) run(today int) {
	users, err := r.store.ListUsers()
	if err != nil {
		r.log.Errorf("Reminder scan failed to list users: %v", err)
		return
	}

	for _, user := range users {
		bills, err := r.store.ListBills(user.ID)
		if err != nil {
			r.log.Errorf("Reminder scan failed to list bills for user %d: %v", user.ID, err)
			continue
		}
		for _, bill := range bills {
			days := advisor.DaysUntilDue(bill.DueDate, today)
			if days > reminderWindowDays {
				continue
			}
			if err := r.sender.SendBillReminder(user.Email, user.Username, bill.Name, bill.Amount, days); err != nil {
				r.log.Warnf("Reminder email failed for user %d bill %d: %v", user.ID, bill.ID, err)
			}
		}
	}
}
