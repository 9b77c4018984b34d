package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validators"
)

type Account struct {
	Email        string
	PasswordHash string
	Disabled     bool
}

// ParseAccounts reads "email:bcrypt-hash[:disabled]" entries.
func ParseAccounts(entries []string) ([]Account, error) {
	out := make([]Account, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.Split(e, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed admin account entry %q", e)
		}
		acc := Account{Email: strings.ToLower(strings.TrimSpace(parts[0])), PasswordHash: parts[1]}
		if len(parts) == 3 {
			if parts[2] != "disabled" {
				return nil, fmt.Errorf("unknown admin account flag %q", parts[2])
			}
			acc.Disabled = true
		}
		out = append(out, acc)
	}
	return out, nil
}

// LocalProvider signs admins in against configured bcrypt hashes and issues
// HS256 tokens. Signed-out tokens are remembered until they expire.
type LocalProvider struct {
	accounts map[string]Account
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewLocalProvider(accounts []Account, secret string, ttl time.Duration) *LocalProvider {
	byEmail := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byEmail[strings.ToLower(a.Email)] = a
	}
	return &LocalProvider{
		accounts: byEmail,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		revoked:  map[string]time.Time{},
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	if !validators.ValidEmail(email) {
		return Session{}, ErrInvalidEmail
	}
	acc, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if acc.Disabled {
		return Session{}, ErrUserDisabled
	}

	now := p.now()
	exp := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   acc.Email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: signed, UID: acc.Email, Email: acc.Email, ExpiresAt: exp}, nil
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (Session, error) {
	claims, err := p.parse(token)
	if err != nil {
		return Session{}, ErrSessionInvalid
	}

	p.mu.Lock()
	_, revoked := p.revoked[claims.ID]
	p.mu.Unlock()
	if revoked {
		return Session{}, ErrSessionInvalid
	}

	acc, ok := p.accounts[claims.Subject]
	if !ok || acc.Disabled {
		return Session{}, ErrSessionInvalid
	}
	return Session{Token: token, UID: acc.Email, Email: acc.Email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// SignOut is a no-op for tokens that are already invalid.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for id, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, id)
		}
	}
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func (p *LocalProvider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, errors.New("token without id")
	}
	return claims, nil
}
