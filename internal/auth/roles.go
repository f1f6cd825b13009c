package auth

import (
	"strings"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

// Destination is a navigable area of the application.
type Destination struct {
	Name  string        `json:"name"`
	Path  string        `json:"path"`
	Roles []domain.Role `json:"-"`
}

var allRoles = []domain.Role{domain.RolePatient, domain.RoleDoctor, domain.RoleAdmin}

// Destinations in menu order.
var Destinations = []Destination{
	{Name: "dashboard", Path: "/dashboard", Roles: allRoles},
	{Name: "patients", Path: "/patients", Roles: []domain.Role{domain.RoleDoctor, domain.RoleAdmin}},
	{Name: "appointments", Path: "/appointments", Roles: allRoles},
	{Name: "doctors", Path: "/doctors", Roles: []domain.Role{domain.RolePatient, domain.RoleAdmin}},
	{Name: "profile", Path: "/profile", Roles: allRoles},
}

// PublicPaths are always admitted.
var PublicPaths = []string{"/", "/login", "/register", "/oauth2/redirect"}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Allows reports whether role may reach d. Unknown roles reach nothing.
func (d Destination) Allows(role domain.Role) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// VisibleDestinations filters the menu for role.
func VisibleDestinations(role domain.Role) []Destination {
	visible := make([]Destination, 0, len(Destinations))
	for _, d := range Destinations {
		if d.Allows(role) {
			visible = append(visible, d)
		}
	}
	return visible
}

// DestinationNamed looks a destination up by name.
func DestinationNamed(name string) (Destination, bool) {
	for _, d := range Destinations {
		if d.Name == name {
			return d, true
		}
	}
	return Destination{}, false
}

// DestinationFor maps a path to the destination owning it, e.g. /patients/4/edit
// belongs to patients.
func DestinationFor(path string) (Destination, bool) {
	for _, d := range Destinations {
		if path == d.Path || strings.HasPrefix(path, d.Path+"/") {
			return d, true
		}
	}
	return Destination{}, false
}

func isPublic(path string) bool {
	for _, p := range PublicPaths {
		if path == p {
			return true
		}
	}
	return false
}
