package services

// Principal identifies who is calling. The zero value is the anonymous
// principal: no session, no user id.
type Principal struct {
	UserID string
}

// Anonymous is the principal of requests without a session.
var Anonymous = Principal{}

// IsAnonymous reports whether the principal has no authenticated user.
func (p Principal) IsAnonymous() bool {
	return p.UserID == ""
}
