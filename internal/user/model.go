package user

import "time"

// User represents a row in the users table.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Summary is the nested representation embedded in card responses.
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summarize strips the credential fields from a User.
func Summarize(u *User) Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email}
}
