package domain

import "slices"

// Capability is a named permission, e.g. manage_options
type Capability string

// well-known capabilities
const (
	CapManageOptions Capability = "manage_options"
	CapEditPosts     Capability = "edit_posts"
	CapRead          Capability = "read"
)

// RoleCapabilities maps role names to the capabilities they grant
var RoleCapabilities = map[string][]Capability{
	"administrator": {CapManageOptions, CapEditPosts, CapRead},
	"editor":        {CapEditPosts, CapRead},
	"subscriber":    {CapRead},
}

// Caller is the identity and permissions of whoever makes a request.
// Zero value is an anonymous caller without capabilities.
type Caller struct {
	Login        string
	Capabilities []Capability
}

// Anonymous reports whether the caller is not authenticated
func (c Caller) Anonymous() bool {
	return c.Login == ""
}

// Can checks if the caller has the given capability
func (c Caller) Can(capability Capability) bool {
	return slices.Contains(c.Capabilities, capability)
}

// NewCaller makes a caller with capabilities of the role plus extra ones, without duplicates
func NewCaller(login, role string, extra ...Capability) Caller {
	caps := make([]Capability, 0, len(RoleCapabilities[role])+len(extra))
	for _, c := range append(slices.Clone(RoleCapabilities[role]), extra...) {
		if !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}
	return Caller{Login: login, Capabilities: caps}
}
