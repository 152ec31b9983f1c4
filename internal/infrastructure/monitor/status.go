package monitor

import "time"

type Status struct {
	PostgreSQL       bool      `json:"postgresql"`
	Redis            bool      `json:"redis"`
	Ledger           bool      `json:"ledger"`
	TrackedReminders int       `json:"tracked_reminders"`
	LastCheck        time.Time `json:"last_check"`
}
