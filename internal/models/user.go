package models

// User is a registered account. ID is immutable; profile fields may change.
type User struct {
	ID        int    `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name,omitempty"`
	LastName  string `db:"last_name" json:"last_name,omitempty"`
	Avatar    string `db:"avatar" json:"avatar,omitempty"`
	Online    bool   `db:"online" json:"online"`
}

// FullName returns "First Last" when both parts are set, otherwise the username.
func (u User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
