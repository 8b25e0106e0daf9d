package identity

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Role gates which routes and order actions a wallet may use.
type Role string

const (
	RoleNone    Role = ""
	RoleDonor   Role = "donor"
	RoleCharity Role = "charity"
	RoleVendor  Role = "vendor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleCharity, RoleVendor:
		return true
	}

	return false
}

var (
	ErrNotFound          = errors.New("user not found")
	ErrNoRole            = errors.New("wallet has no role")
	ErrInvalidUser       = errors.New("invalid user")
	ErrAlreadyRegistered = errors.New("wallet already registered")
	ErrUnavailable       = errors.New("user directory unavailable")
)

// User is a wallet that completed registration.
type User struct {
	Address     string
	Role        Role
	DisplayName string
	CreatedAt   time.Time
}

const maxAddressLen = 128

// NormalizeAddress trims the address and lower-cases 0x-prefixed hex
// addresses so that checksummed and plain forms map to the same user.
func NormalizeAddress(address string) (string, error) {
	a := strings.TrimSpace(address)
	if a == "" || len(a) > maxAddressLen {
		return "", ErrInvalidUser
	}

	for _, r := range a {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return "", ErrInvalidUser
		}
	}

	if len(a) > 2 && (a[:2] == "0x" || a[:2] == "0X") && isHex(a[2:]) {
		return "0x" + strings.ToLower(a[2:]), nil
	}

	return a, nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}

	return true
}
