// Package policy decides what each role may do.  Authorization is an
// explicit lookup of (role, capability) so handlers, middleware and
// services share one table.
package policy

import "github.com/cineticket/cineticket-api/internal/model"

// Capability names one privileged action.
type Capability string

const (
	ManageCatalog    Capability = "catalog:manage"    // create movies, cinemas and halls
	ManageScreenings Capability = "screenings:manage" // schedule screenings and change their status
	ModerateReviews  Capability = "reviews:moderate"  // delete reviews written by others
)

var grants = map[model.Role]map[Capability]bool{
	model.RoleManager: {
		ManageCatalog:    true,
		ManageScreenings: true,
	},
	model.RoleAdmin: {
		ManageCatalog:    true,
		ManageScreenings: true,
		ModerateReviews:  true,
	},
}

// Can reports whether role holds capability.  Unknown roles hold nothing.
func Can(role model.Role, capability Capability) bool {
	return grants[role][capability]
}
