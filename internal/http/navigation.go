package httpx

import (
	domainauth "github.com/carhub/carhub-web/internal/domain/auth"
)

// NavEntry is one item in the site navigation.
type NavEntry struct {
	Label string
	Path  string
	// Post marks entries rendered as a form submit instead of a link.
	Post bool
}

// BuildNav maps an identity and the admin gate state onto the navigation
// entries the visitor should see. It is pure presentation: what the menu
// offers, never what a guard permits. A nil identity is an anonymous visitor;
// gateUnlocked reflects the parallel admin credential path, which exists
// independently of the marketplace session.
func BuildNav(identity *domainauth.Identity, gateUnlocked bool) []NavEntry {
	entries := []NavEntry{
		{Label: "Home", Path: "/"},
	}
	admin := NavEntry{Label: "Admin", Path: "/admin/dashboard"}

	if identity == nil {
		if gateUnlocked {
			entries = append(entries, admin)
		}
		return append(entries,
			NavEntry{Label: "Log in", Path: "/login"},
			NavEntry{Label: "Sign up", Path: "/signup"},
		)
	}

	entries = append(entries,
		NavEntry{Label: "Profile", Path: "/profile"},
		NavEntry{Label: "My Orders", Path: "/profile/orders"},
	)
	if identity.Role == domainauth.RoleAdmin || gateUnlocked {
		entries = append(entries, admin)
	}
	return append(entries, NavEntry{Label: "Log out", Path: "/logout", Post: true})
}
