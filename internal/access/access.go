// Package access decides which pages a wallet session may open.
package access

import (
	"strings"

	"github.com/dermanow/dermanow/internal/identity"
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
)

type area struct {
	prefix string
	role   identity.Role
	home   string
}

var areas = []area{
	{prefix: "/charity/", role: identity.RoleCharity, home: "/charity/dashboard"},
	{prefix: "/Vhack-2025/vendor/", role: identity.RoleVendor, home: "/Vhack-2025/vendor/dashboard"},
	{prefix: "/donor/", role: identity.RoleDonor, home: "/donor/dashboard"},
}

// Session is what the caller knows about the visitor.
type Session struct {
	Address string
	Role    identity.Role
}

// Decision tells the client to stay or go elsewhere.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

func allow() Decision { return Decision{Allow: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

// Home returns the landing page for a role, or "" when it has none.
func Home(role identity.Role) string {
	for _, a := range areas {
		if a.role == role {
			return a.home
		}
	}

	return ""
}

// RequiredRole returns the role guarding path.
func RequiredRole(path string) (identity.Role, bool) {
	for _, a := range areas {
		if strings.HasPrefix(path, a.prefix) || path == strings.TrimSuffix(a.prefix, "/") {
			return a.role, true
		}
	}

	return identity.RoleNone, false
}

// Decide applies the routing rules in order: connect a wallet, then
// register a role, then stay inside your own area.
func Decide(path string, s Session) Decision {
	if s.Address == "" {
		if path == LoginPath {
			return allow()
		}

		return redirect(LoginPath)
	}

	if !s.Role.Valid() {
		if path == RegisterPath {
			return allow()
		}

		return redirect(RegisterPath)
	}

	home := Home(s.Role)

	if path == LoginPath || path == RegisterPath {
		return redirect(home)
	}

	if need, ok := RequiredRole(path); ok && need != s.Role {
		return redirect(home)
	}

	return allow()
}
