package user

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a user may do within the API.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// User is a person who belongs to an organization. Superadmins are platform
// operators and may act across organizations.
type User struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Cellphone      string
	TaxID          string // CPF or CNPJ, required by the payment provider
	Role           Role
	APIToken       string
	CreatedAt      time.Time
}

// IsSuperadmin reports whether the user is a platform operator.
func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

// BelongsTo reports whether the user is a member of the given organization.
func (u *User) BelongsTo(orgID uuid.UUID) bool {
	return u.OrganizationID == orgID
}

// HasContactInfo reports whether the user carries everything the payment
// provider needs to create a charge.
func (u *User) HasContactInfo() bool {
	return u.Name != "" && u.Email != "" && u.Cellphone != "" && u.TaxID != ""
}
