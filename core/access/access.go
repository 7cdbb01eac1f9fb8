// Package access decides which routes a user may reach. Gating is by
// role membership; an authenticated user without the roles for a
// section simply does not see it (no 403 page).
package access

import (
	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/session"
)

// Roles
const (
	RoleSuperadmin     = "superadmin"
	RoleKomandan       = "komandan"
	RoleKediriGuru     = "kediri:guru"
	RoleKediriAdmin    = "kediri:admin"
	RoleKertosonoGuru  = "kertosono:guru"
	RoleKertosonoAdmin = "kertosono:admin"
)

// The section and scoring sets are deliberately kept as independent
// named sets per track, even where they are equal today, so narrowing
// one gate never touches the other.
var (
	kediriSectionRoles = []string{RoleKediriGuru, RoleKediriAdmin, RoleSuperadmin}
	kediriScoringRoles = []string{RoleKediriGuru, RoleKediriAdmin, RoleSuperadmin}

	kertosonoSectionRoles = []string{RoleKertosonoGuru, RoleKertosonoAdmin, RoleSuperadmin, RoleKomandan}
	kertosonoScoringRoles = []string{RoleKertosonoGuru, RoleKertosonoAdmin, RoleSuperadmin}
)

// CanViewSection reports whether the user may enter a track's
// participant section at all.
func CanViewSection(u *session.User, track participant.Track) bool {
	switch track {
	case participant.TrackKediri:
		return u.HasAnyRole(kediriSectionRoles...)
	case participant.TrackKertosono:
		return u.HasAnyRole(kertosonoSectionRoles...)
	}
	return false
}

// CanScore reports whether the user may reach a track's scoring
// sub-routes (academic and behavioral).
func CanScore(u *session.User, track participant.Track) bool {
	switch track {
	case participant.TrackKediri:
		return u.HasAnyRole(kediriScoringRoles...)
	case participant.TrackKertosono:
		return u.HasAnyRole(kertosonoScoringRoles...)
	}
	return false
}

// Decision is the outcome of resolving a route against a session.
type Decision int

const (
	Allow Decision = iota
	// Hidden means the route is not rendered for this user at all.
	Hidden
	RedirectLogin
	RedirectHome
)

// Route describes a navigable screen at the granularity access control
// cares about.
type Route struct {
	Name string
	// Track is empty for global routes (home, stats, account, login).
	Track participant.Track
	// Scoring marks the stricter nested sub-routes of a section.
	Scoring bool
	// LoginPage marks the login screen, which flips the redirect rule.
	LoginPage bool
}

// Resolve applies the access rules: unauthenticated users are sent to
// login from everything, authenticated users are bounced off the login
// page, and section routes are hidden from users lacking the roles.
func Resolve(sess session.Session, route Route) Decision {
	if route.LoginPage {
		if sess.IsAuthenticated() {
			return RedirectHome
		}
		return Allow
	}
	if !sess.IsAuthenticated() {
		return RedirectLogin
	}
	if route.Track == "" {
		return Allow
	}
	if route.Scoring {
		if CanScore(sess.User, route.Track) {
			return Allow
		}
		return Hidden
	}
	if CanViewSection(sess.User, route.Track) {
		return Allow
	}
	return Hidden
}
