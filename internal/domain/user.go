package domain

import "strings"

// Role is the user type the backend assigns to an account.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole normalizes backend role spellings. The profile endpoint renders the
// display name ("Médecin", "Patient") instead of the enum constant.
func ParseRole(raw string) Role {
	switch strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_") {
	case "PATIENT":
		return RolePatient
	case "DOCTOR", "MÉDECIN", "MEDECIN":
		return RoleDoctor
	case "ADMIN":
		return RoleAdmin
	default:
		return ""
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

// User is the last-known profile snapshot of the signed-in account. It is a
// display cache only; the access token governs access.
type User struct {
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	UserType     string `json:"userType,omitempty"`
	Roles        string `json:"roles,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Address      string `json:"address,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}

// Role returns the normalized role of the snapshot.
func (u *User) Role() Role {
	if u == nil {
		return ""
	}
	if role := ParseRole(u.UserType); role != "" {
		return role
	}
	if strings.Contains(u.Roles, "ROLE_ADMIN") {
		return RoleAdmin
	}
	return ""
}

// DisplayName prefers the full name over the login name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
