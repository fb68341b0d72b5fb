package entity

// AuthContext is the identity a request acts with. The zero value is anonymous.
type AuthContext struct {
	UserID string
	Role   Role
}

func (a AuthContext) IsAnonymous() bool {
	return a.UserID == ""
}

func (a AuthContext) IsEmployee() bool {
	return !a.IsAnonymous() && a.Role == RoleEmployee
}

// CanActFor reports whether the identity may operate on the customer's behalf.
func (a AuthContext) CanActFor(customerID string) bool {
	if a.IsAnonymous() {
		return false
	}
	return a.IsEmployee() || a.UserID == customerID
}
