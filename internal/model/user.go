package model

// Role enumerates account roles as reported by the backend.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User is the cached profile record stored alongside the token pair.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	ShopName  string `json:"shopname,omitempty"`
	ShopDesc  string `json:"shopdes,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// CanManageStore reports whether the user may call admin endpoints
// (product CRUD, order status management).
func (u *User) CanManageStore() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSeller)
}
