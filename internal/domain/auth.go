package domain

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   string
	UserName string
	Role     string
}
