package domain

import "time"

// User is a directory entry owned by the user repository.
type User struct {
	ID          int
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	DateCreated time.Time
	DateUpdated *time.Time
	IsActive    bool
}

// UserChanges carries the writable fields of a user.
type UserChanges struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber *string
	IsActive    bool
}
