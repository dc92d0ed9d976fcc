// Package authz resolves who is calling once per request and answers
// permission questions against that resolved principal.
package authz

import (
	"context"
	"strings"

	"equiptrak/pkg/contextkeys"
	apperrors "equiptrak/pkg/errors"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole accepts the role claim of a bearer token.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", apperrors.ErrUnknownRole
	}
}

// Principal is the authenticated caller. CompanyID scopes customers to the
// company they belong to; it is ignored for admins.
type Principal struct {
	Subject   string
	Email     string
	Role      Role
	CompanyID *uint64
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// CompanyScope returns the company the principal is restricted to, or nil
// when the principal may see every company.
func (p *Principal) CompanyScope() *uint64 {
	if p == nil || p.IsAdmin() {
		return nil
	}
	if p.CompanyID == nil {
		// A customer without a company sees nothing.
		none := uint64(0)
		return &none
	}
	return p.CompanyID
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(*Principal)
	if !ok || p == nil {
		return nil, apperrors.ErrPrincipalNotFoundInContext
	}
	return p, nil
}
