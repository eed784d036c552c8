package domain

// NotificationTarget is the projection of a work item used to compose and
// address a notification email. Emails are empty strings when the
// corresponding user is unset or has no address.
type NotificationTarget struct {
	Kind          Kind
	ID            string
	Title         string
	Priority      Priority
	Status        Status
	PrimaryEmail  string
	ReporterEmail string
}
