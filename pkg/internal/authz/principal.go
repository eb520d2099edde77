package authz

// Principal is the authenticated caller P referenced throughout §4.4: a
// user id plus the role-string set extracted from their bearer token.
type Principal struct {
	ID    string
	Roles Roles
}
