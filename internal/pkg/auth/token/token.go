/*
Package token implements the signed, time-limited access tokens presented
at connection time.

Tokens are HS256-signed JWTs carrying the subject (the user name) and the
issue time. Validity is decided server-side from the configured maximum
age rather than an embedded expiry, so operators can tighten or extend the
window without reissuing tokens.
*/
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer identifies the issuer embedded in every token.
const TokenIssuer = "chitty"

// Result classifies the outcome of a token check.
type Result int

const (
	// OK means the signature is valid and the token is within its age
	// window.
	OK Result = iota

	// Expired means the signature is valid but the token is older than the
	// configured maximum age.
	Expired

	// BadSignature means the token is malformed, tampered with, or signed
	// with a different key.
	BadSignature
)

// String returns the result name, for logs.
func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case Expired:
		return "expired"
	case BadSignature:
		return "bad signature"
	default:
		return "unknown"
	}
}

// Check is the outcome of verifying a token: the classification plus the
// recovered payload value. Value is empty unless Result is OK.
type Check struct {
	Result Result
	Value  string
}

// Gate issues and verifies access tokens. It holds no mutable state and
// is safe for concurrent use.
type Gate struct {
	secret []byte
	maxAge time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewGate constructs a Gate with the given signing secret and maximum
// token age.
func NewGate(secret string, maxAge time.Duration) *Gate {
	return &Gate{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue creates a signed token embedding value as its subject, stamped
// with the current time.
func (g *Gate) Issue(value string) (string, error) {
	claims := jwt.StandardClaims{
		Subject:  value,
		IssuedAt: g.now().Unix(),
		Issuer:   TokenIssuer,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return t.SignedString(g.secret)
}

// Verify checks a token string and classifies the outcome. It accepts
// arbitrary input and never returns an error: every failure mode maps to
// a Check result.
func (g *Gate) Verify(tokenString string) Check {
	claims := &jwt.StandardClaims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	})

	if err != nil || !t.Valid {
		return Check{Result: BadSignature}
	}

	issuedAt := time.Unix(claims.IssuedAt, 0)
	if g.now().Sub(issuedAt) > g.maxAge {
		return Check{Result: Expired}
	}

	return Check{Result: OK, Value: claims.Subject}
}
