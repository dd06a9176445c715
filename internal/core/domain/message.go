package domain

import "time"

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one immutable turn of a project conversation.
// Messages order by CreatedAt, then by Seq.
type Message struct {
	// ID is the unique identifier for the message.
	ID string

	// ProjectID links to the owning Project.
	ProjectID string

	// Role is who wrote the message.
	Role Role

	// Content is the message text.
	Content string

	// CreatedAt is when the message was stored.
	CreatedAt time.Time

	// Seq is the store-assigned insertion order, used to break timestamp ties.
	Seq int64
}
