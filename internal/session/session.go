package session

// User is the lightweight profile kept alongside the auth token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Store holds the authenticated session: an opaque token and the user
// profile. Controllers receive a Store explicitly instead of touching
// ambient state, so tests can substitute an in-memory provider.
type Store interface {
	Token() string
	SetToken(token string) error
	RemoveToken() error

	User() *User
	SetUser(user *User) error

	// Clear removes both token and user.
	Clear() error

	IsAuthenticated() bool
}
