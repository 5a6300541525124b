package domain

import "time"

// Member is a registered church member.
type Member struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"`
	Location  string    `json:"location,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
	Tribe     string    `json:"tribe,omitempty"`
	JoinDate  string    `json:"join_date"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberRegistration is the input of a member sign-up.
type MemberRegistration struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	Location  string `json:"location,omitempty"`
	GroupName string `json:"group_name,omitempty"`
	Tribe     string `json:"tribe,omitempty"`
}

// Visitor is a first-time or occasional guest.
type Visitor struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Origin       string    `json:"origin,omitempty"`
	Location     string    `json:"location,omitempty"`
	Email        string    `json:"email,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	FollowUpSent bool      `json:"follow_up_sent"`
	VisitDate    string    `json:"visit_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// VisitorRegistration is the input of a visitor intake form.
type VisitorRegistration struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Origin    string `json:"origin,omitempty"`
	Location  string `json:"location,omitempty"`
	Email     string `json:"email,omitempty"`
	Reason    string `json:"reason,omitempty"`
	VisitDate string `json:"visit_date,omitempty"`
}

// RegistrationResult pairs a stored record with the outcome of its
// best-effort welcome message.
type RegistrationResult[T any] struct {
	Record       T          `json:"record"`
	Notification SMSOutcome `json:"notification"`
}
