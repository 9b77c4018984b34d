// Package auth decides who may reach the back office.
package auth

import (
	"context"
	"errors"
	"time"
)

// LoginPath is where anonymous visitors of protected views are sent.
const LoginPath = "/admin/login"

type State int

const (
	Unknown State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

type Decision struct {
	Allow    bool
	Pending  bool
	Redirect string
}

// Guard maps a session state to what a protected view may do. While the
// state is unknown nothing is rendered and nobody is redirected.
func Guard(s State) Decision {
	switch s {
	case Authenticated:
		return Decision{Allow: true}
	case Anonymous:
		return Decision{Redirect: LoginPath}
	}
	return Decision{Pending: true}
}

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
)

// LoginMessage is the text shown for a failed sign-in.
func LoginMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email address"
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	}
	return "An error occurred during login"
}

type Session struct {
	Token     string    `json:"-"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider is the identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Verify fails with ErrSessionInvalid when the token is no longer
	// accepted. Any other error means the answer is not known yet.
	Verify(ctx context.Context, token string) (Session, error)
	SignOut(ctx context.Context, token string) error
}

// Resolve turns a session token into a State.
func Resolve(ctx context.Context, p Provider, token string) (State, Session, error) {
	if token == "" {
		return Anonymous, Session{}, nil
	}
	sess, err := p.Verify(ctx, token)
	switch {
	case err == nil:
		return Authenticated, sess, nil
	case errors.Is(err, ErrSessionInvalid):
		return Anonymous, Session{}, nil
	}
	return Unknown, Session{}, err
}
