package accounts

import "time"

// User is the public representation of an account. The password hash never
// leaves the package.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
