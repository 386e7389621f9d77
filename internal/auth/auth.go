// Package auth issues and checks the bearer tokens of the MOTK API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidandcat/motk/internal/logging"
	"github.com/kidandcat/motk/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// AccountLookup resolves a token subject to its account.
type AccountLookup interface {
	GetAccountByName(ctx context.Context, name string) (models.Account, string, error)
}

type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	accounts AccountLookup
	now      func() time.Time
}

func New(secret string, ttl time.Duration, accounts AccountLookup) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, accounts: accounts, now: time.Now}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Issue signs an HS256 token whose subject is the account name.
func (a *Authenticator) Issue(accountName string) (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountName,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Subject validates token and returns the account name it was issued for.
func (a *Authenticator) Subject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Login checks credentials and returns a fresh token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	_, hash, err := a.accounts.GetAccountByName(ctx, username)
	if err != nil || !CheckPassword(hash, password) {
		return "", ErrInvalidToken
	}
	return a.Issue(username)
}

type contextKey string

const accountKey contextKey = "account"

// CurrentAccount returns the account attached by Middleware.
func CurrentAccount(ctx context.Context) (models.Account, bool) {
	acc, ok := ctx.Value(accountKey).(models.Account)
	return acc, ok
}

// WithAccount attaches acc to ctx.
func WithAccount(ctx context.Context, acc models.Account) context.Context {
	return context.WithValue(ctx, accountKey, acc)
}

// Middleware rejects requests without a valid bearer token and attaches the
// caller's account to the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			unauthorized(w, "Not authenticated")
			return
		}
		name, err := a.Subject(token)
		if err != nil {
			logging.Logger.Debugf("Event ID: TOKEN_REJECTED, Description: %v", err)
			unauthorized(w, "Could not validate credentials")
			return
		}
		acc, _, err := a.accounts.GetAccountByName(r.Context(), name)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
	})
}

// RequireRole allows only accounts whose type is one of roles.
func RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			acc, ok := CurrentAccount(r.Context())
			if !ok || !slices.Contains(roles, acc.AccountType) {
				writeDetail(w, http.StatusForbidden, "Not enough permissions")
				return
			}
			next(w, r)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorBody{Detail: detail})
}
