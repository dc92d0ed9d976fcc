package authz

import (
	"context"

	apperrors "equiptrak/pkg/errors"
)

type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// Can reports whether p holds permission. When companyID is non-nil the
// target belongs to that company and customers must belong to it too.
func (g *Gatekeeper) Can(p *Principal, permission string, companyID *uint64) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if !rolePermissions[p.Role][permission] {
		return false
	}
	if companyID == nil {
		return true
	}
	return p.CompanyID != nil && *p.CompanyID == *companyID
}

// Authorize is Can for service code: it reads the principal from ctx and
// returns ErrForbidden instead of false.
func (g *Gatekeeper) Authorize(ctx context.Context, permission string, companyID *uint64) (*Principal, error) {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !g.Can(p, permission, companyID) {
		return nil, apperrors.ErrForbidden
	}
	return p, nil
}
