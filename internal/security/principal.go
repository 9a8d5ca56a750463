package security

import (
	"context"
	"net/http"
	"slices"

	"github.com/kiranshivaraju/crisisapi/pkg/models"
)

type Role string

const (
	RoleUser    Role = "ROLE_USER"
	RoleAPIUser Role = "ROLE_API_USER"
	// RoleKeyAdmin is held by service keys, which belong to no user account.
	RoleKeyAdmin Role = "ROLE_KEY_ADMIN"
)

type PrincipalType string

const (
	PrincipalSession PrincipalType = "session"
	PrincipalAPIKey  PrincipalType = "api_key"
)

// Principal is the authenticated identity attached to a request.
// For session principals Identifier is the plaintext email; for API key
// principals it is the key value.
type Principal struct {
	Type       PrincipalType
	Identifier string
	Roles      []Role
	Credential *models.Credential
}

// NewSessionPrincipal grants ROLE_USER, plus ROLE_API_USER once the account holds a key.
func NewSessionPrincipal(email string, c *models.Credential) *Principal {
	roles := []Role{RoleUser}
	if c != nil && c.HasKey() {
		roles = append(roles, RoleAPIUser)
	}
	return &Principal{Type: PrincipalSession, Identifier: email, Roles: roles, Credential: c}
}

// NewAPIKeyPrincipal grants ROLE_API_USER and ROLE_USER, plus ROLE_KEY_ADMIN
// when the key is not bound to a user account.
func NewAPIKeyPrincipal(c *models.Credential) *Principal {
	roles := []Role{RoleAPIUser, RoleUser}
	if c.Email == nil {
		roles = append(roles, RoleKeyAdmin)
	}
	return &Principal{
		Type:       PrincipalAPIKey,
		Identifier: c.Key(),
		Roles:      roles,
		Credential: c,
	}
}

func (p *Principal) HasRole(role Role) bool {
	return slices.Contains(p.Roles, role)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

func PrincipalFromRequest(r *http.Request) *Principal {
	return PrincipalFromContext(r.Context())
}
