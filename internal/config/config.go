package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultWorkers is the default notification worker pool size.
	DefaultWorkers = 4

	// DefaultQueueSize is the default notification queue buffer size.
	DefaultQueueSize = 256

	// DefaultReminderSchedule fires the overdue reminder scan daily at 09:00.
	DefaultReminderSchedule = "0 9 * * *"

	// DefaultMailFrom is the sender address for notification emails.
	DefaultMailFrom = "taskmanager@localhost"

	// DefaultSMTPPort is the default SMTP submission port.
	DefaultSMTPPort = 587
)
