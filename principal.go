package marketd

import "github.com/marketd/marketd/kit/platform"

// Principal is the resolved identity making a request. The zero value is the
// anonymous principal. Principals are request scoped and never persisted.
type Principal struct {
	UserID platform.ID
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// Authenticated reports whether the principal carries a verified identity.
func (p Principal) Authenticated() bool {
	return p.UserID.Valid()
}
