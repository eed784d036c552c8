package domain

import "time"

// User represents a registered account that can own, report, and be
// assigned to work items.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Age          *int
	PhoneNumber  string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
