package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tasksync/internal/gateway"
	"tasksync/internal/session"
	"tasksync/internal/util"
)

// Login contract modes. ModeLookup matches a user by email with no
// password check and mints a mock token; it exists for local development
// only and must be enabled explicitly.
const (
	ModeToken  = "token"
	ModeLookup = "lookup"
)

var (
	// ErrInvalidCredentials is returned when login finds no matching user
	// or the server rejects the password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSubmitInFlight is returned when a submit races an outstanding one.
	ErrSubmitInFlight = errors.New("a request is already in progress")
)

// ValidationError blocks submission before any gateway request is issued.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Result reports a successful login or registration.
type Result struct {
	Token string
	User  session.User
	// Route is where the caller should navigate next.
	Route string
}

// Controller orchestrates the login and registration flows: local
// validation, one gateway operation, then a session write on success.
// Failures never touch the session store.
type Controller struct {
	gw    *gateway.Client
	store session.Store
	mode  string

	mu         sync.Mutex
	submitting bool
}

func NewController(gw *gateway.Client, store session.Store, mode string) *Controller {
	if mode == "" {
		mode = ModeToken
	}
	return &Controller{gw: gw, store: store, mode: mode}
}

// beginSubmit rejects re-entrant submission while a request is outstanding.
func (c *Controller) beginSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitting {
		return ErrSubmitInFlight
	}
	c.submitting = true
	return nil
}

func (c *Controller) endSubmit() {
	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()
}

// Login authenticates the user and writes the session on success.
func (c *Controller) Login(ctx context.Context, email, password string) (*Result, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &ValidationError{Msg: "please fill in all fields"}
	}

	if err := c.beginSubmit(); err != nil {
		return nil, err
	}
	defer c.endSubmit()

	email = strings.ToLower(strings.TrimSpace(email))

	var token string
	var user *session.User
	var err error
	if c.mode == ModeLookup {
		token, user, err = c.loginLookup(ctx, email)
	} else {
		token, user, err = c.loginToken(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}

	return c.establish(token, user)
}

// loginToken is the production contract: the server verifies the password
// and issues the token.
func (c *Controller) loginToken(ctx context.Context, email, password string) (string, *session.User, error) {
	var out struct {
		Login struct {
			Token string       `json:"token"`
			User  session.User `json:"user"`
		} `json:"login"`
	}
	if err := c.gw.Mutate(ctx, gateway.LoginUser, gateway.Variables{
		"email":    email,
		"password": password,
	}, &out); err != nil {
		return "", nil, err
	}
	if out.Login.Token == "" || out.Login.User.ID == "" {
		return "", nil, ErrInvalidCredentials
	}
	return out.Login.Token, &out.Login.User, nil
}

// loginLookup matches a user record by email. No password verification
// happens anywhere on this path.
func (c *Controller) loginLookup(ctx context.Context, email string) (string, *session.User, error) {
	var out struct {
		Users []session.User `json:"users"`
	}
	// always a fresh read; a cached lookup could admit a deleted user
	if err := c.gw.Refetch(ctx, gateway.FindUserByEmail, gateway.Variables{
		"email": email,
	}, &out); err != nil {
		return "", nil, err
	}
	if len(out.Users) == 0 {
		return "", nil, ErrInvalidCredentials
	}
	user := out.Users[0]
	return "mock-token-" + user.ID, &user, nil
}

// Register creates an account and logs the new user in.
func (c *Controller) Register(ctx context.Context, name, email, password, confirmPassword string) (*Result, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" ||
		password == "" || confirmPassword == "" {
		return nil, &ValidationError{Msg: "please fill in all fields"}
	}
	if password != confirmPassword {
		return nil, &ValidationError{Msg: "passwords do not match"}
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	if err := c.beginSubmit(); err != nil {
		return nil, err
	}
	defer c.endSubmit()

	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	var out struct {
		InsertUsersOne *session.User `json:"insert_users_one"`
	}
	if err := c.gw.Mutate(ctx, gateway.CreateUser, gateway.Variables{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out); err != nil {
		return nil, err
	}
	if out.InsertUsersOne == nil {
		return nil, ErrInvalidCredentials
	}
	user := out.InsertUsersOne

	if c.mode == ModeLookup {
		return c.establish("mock-token-"+user.ID, user)
	}

	// token mode: obtain a real token for the fresh account
	token, user, err := c.loginToken(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.establish(token, user)
}

func (c *Controller) establish(token string, user *session.User) (*Result, error) {
	if err := c.store.SetToken(token); err != nil {
		return nil, err
	}
	if err := c.store.SetUser(user); err != nil {
		return nil, err
	}
	return &Result{Token: token, User: *user, Route: "/tasks"}, nil
}

// ErrorMessage converts any flow error into the user-visible notification.
func ErrorMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Msg
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && len(gwErr.Messages) > 0 {
		return gwErr.Error()
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return ErrInvalidCredentials.Error()
	}
	if err != nil {
		return err.Error()
	}
	return "invalid credentials"
}
