package domain

// Session pairs the bearer token with the role it grants. Token and role are
// one logical record: both set after a successful login, both empty otherwise.
// Absence is the zero value, never an empty-token-with-role or the reverse.
type Session struct {
	Token string
	Role  Role
}

// Present reports whether a session is established.
func (s Session) Present() bool {
	return s.Token != ""
}
