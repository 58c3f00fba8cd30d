package user

import (
	"strings"

	"github.com/madrasah/darsplan/core"
)

// defaultDisplayName is shown when neither the profile row nor the identity
// provider carries a usable name.
const defaultDisplayName = "Teacher"

// FirstNonEmpty returns the first value in the chain that is not blank
// after trimming whitespace.
func FirstNonEmpty(vals ...string) string {
	for _, val := range vals {
		if v := core.CleanString(val); v != "" {
			return v
		}
	}
	return ""
}

// ResolveDisplayName resolves a display name from an ordered fallback chain:
// identity name, then the local part of the email address, then a literal default.
func ResolveDisplayName(ident Identity) string {
	return FirstNonEmpty(ident.Name, emailLocalPart(ident.Email), defaultDisplayName)
}

// ResolveRole maps any unknown or absent role to RoleTeacher.
func ResolveRole(role string) string {
	if core.CleanString(role, true /* lower */) == RoleAdmin {
		return RoleAdmin
	}
	return RoleTeacher
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}
