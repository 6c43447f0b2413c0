package dto

import domainuser "stayhub/internal/domain/user"

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Contact    string `json:"contact"`
	HasWallet  bool   `json:"has_wallet"`
	Income     *int64 `json:"income"`
	Authorized bool   `json:"authorized"`
}

// MapUser exposes income only to the user themselves.
func MapUser(u *domainuser.User) User {
	out := User{
		ID:         string(u.ID),
		Name:       u.Name,
		Avatar:     u.Avatar,
		Contact:    u.Contact,
		HasWallet:  u.HasWallet(),
		Authorized: u.Authorized,
	}
	if u.Authorized {
		income := u.Income
		out.Income = &income
	}
	return out
}

type Wallet struct {
	UserID    string `json:"user_id"`
	HasWallet bool   `json:"has_wallet"`
}
