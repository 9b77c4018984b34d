package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	fbauth "firebase.google.com/go/auth"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// SessionCookies is the part of the Firebase admin auth client the provider
// uses. *auth.Client satisfies it.
type SessionCookies interface {
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookieAndCheckRevoked(ctx context.Context, sessionCookie string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider signs in with email/password through the Identity Toolkit
// REST API and keeps the admin signed in with a Firebase session cookie.
type FirebaseProvider struct {
	client   SessionCookies
	apiKey   string
	ttl      time.Duration
	endpoint string
	http     *http.Client
	now      func() time.Time
}

func NewFirebaseProvider(client SessionCookies, apiKey string, ttl time.Duration) *FirebaseProvider {
	return &FirebaseProvider{
		client:   client,
		apiKey:   apiKey,
		ttl:      ttl,
		endpoint: signInEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	if !validators.ValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}

	body, err := json.Marshal(signInRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true})
	if err != nil {
		return Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?key="+url.QueryEscape(p.apiKey), bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("identity toolkit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var ie identityError
		_ = json.NewDecoder(resp.Body).Decode(&ie)
		return Session{}, mapIdentityError(resp.StatusCode, ie.Error.Message)
	}

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Session{}, fmt.Errorf("decode sign-in response: %w", err)
	}

	cookie, err := p.client.SessionCookie(ctx, out.IDToken, p.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("create session cookie: %w", err)
	}
	return Session{Token: cookie, UID: out.LocalID, Email: out.Email, ExpiresAt: p.now().Add(p.ttl)}, nil
}

// mapIdentityError reads codes like "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account ...".
func mapIdentityError(status int, message string) error {
	code, _, _ := strings.Cut(message, " ")
	switch code {
	case "INVALID_EMAIL":
		return ErrInvalidEmail
	case "USER_DISABLED":
		return ErrUserDisabled
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	}
	return fmt.Errorf("identity toolkit: status %d: %s", status, message)
}

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (Session, error) {
	tok, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, token)
	if err != nil {
		if transient(err) {
			return Session{}, fmt.Errorf("verify session: %w", err)
		}
		return Session{}, ErrSessionInvalid
	}
	email, _ := tok.Claims["email"].(string)
	return Session{Token: token, UID: tok.UID, Email: email, ExpiresAt: time.Unix(tok.Expires, 0)}, nil
}

// SignOut revokes every refresh token of the user behind token.
func (p *FirebaseProvider) SignOut(ctx context.Context, token string) error {
	tok, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, token)
	if err != nil {
		if transient(err) {
			return fmt.Errorf("verify session: %w", err)
		}
		return nil
	}
	if err := p.client.RevokeRefreshTokens(ctx, tok.UID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// transient reports errors that say nothing about the cookie itself: the
// backend or the network could not answer. The SDK reports 5xx, quota and
// other unmapped backend responses as unknown-error, and a failed public key
// refresh as a plain error.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return fbauth.IsUnknown(err) || strings.Contains(err.Error(), "while retrieving public keys")
}
