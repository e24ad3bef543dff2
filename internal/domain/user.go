package domain

// User represents an account in the domain model.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// String returns the username for display purposes.
func (u User) String() string {
	return u.Username
}
