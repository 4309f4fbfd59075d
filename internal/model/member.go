package model

import "time"

// MembershipStatus is the closed set of library membership states.
type MembershipStatus string

// Membership statuses.
const (
	MembershipActive    MembershipStatus = "Active"
	MembershipExpired   MembershipStatus = "Expired"
	MembershipSuspended MembershipStatus = "Suspended"
)

// Valid reports whether s is one of the known statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipExpired, MembershipSuspended:
		return true
	}
	return false
}

// CanBorrow reports whether a member in this status may check out books.
func (s MembershipStatus) CanBorrow() bool {
	return s == MembershipActive
}

// Member is a registered library patron.
type Member struct {
	ID        int64            `json:"member_id" db:"member_id"`
	FirstName string           `json:"first_name" db:"first_name"`
	LastName  string           `json:"last_name" db:"last_name"`
	Email     string           `json:"email" db:"email"`
	Phone     string           `json:"phone,omitempty" db:"phone"`
	JoinDate  Date             `json:"join_date" db:"join_date"`
	Status    MembershipStatus `json:"membership_status" db:"membership_status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// FullName returns "First Last".
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
