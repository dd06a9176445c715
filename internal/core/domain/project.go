package domain

import "time"

// Project is an owner's knowledge corpus. It owns documents and messages.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// OwnerID references the user that owns the project.
	OwnerID string

	// Name is the human-readable name.
	Name string

	// CreatedAt is when the project was created.
	CreatedAt time.Time
}
