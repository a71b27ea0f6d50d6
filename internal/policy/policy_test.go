package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cineticket/cineticket-api/internal/model"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role model.Role
		cap  Capability
		want bool
	}{
		{model.RoleCustomer, ManageCatalog, false},
		{model.RoleCustomer, ModerateReviews, false},
		{model.RoleManager, ManageCatalog, true},
		{model.RoleManager, ManageScreenings, true},
		{model.RoleManager, ModerateReviews, false},
		{model.RoleAdmin, ModerateReviews, true},
		{model.RoleAdmin, ManageScreenings, true},
		{model.Role("root"), ManageCatalog, false},
		{"", ManageCatalog, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.cap), "%s/%s", tc.role, tc.cap)
	}
}
