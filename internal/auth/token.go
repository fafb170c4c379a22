package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/straye-as/erp-gateway/internal/domain"
)

// SessionClaims is what a verified session token resolves to.
type SessionClaims struct {
	CallerID    string
	AdapterName string
	SessionID   string
}

// TokenIssuer mints and verifies the HS256 tokens that login responses hand
// out. The token only references a stored session; revoking the session
// invalidates the token regardless of its expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer. ttl defaults to the session TTL when
// non-positive.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token referencing a caller's backend session.
func (t *TokenIssuer) Issue(callerID, adapterName, sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     callerID,
		"adapter": adapterName,
		"sid":     sessionID,
		"iat":     now.Unix(),
		"exp":     now.Add(t.ttl).Unix(),
		"jti":     uuid.NewString(),
	})
	return token.SignedString(t.secret)
}

// Parse verifies a session token and extracts its claims. Any verification
// failure, including expiry, surfaces as an AuthenticationError.
func (t *TokenIssuer) Parse(tokenString string) (*SessionClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		msg := "invalid session token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "session token expired"
		}
		return nil, &domain.AuthenticationError{Message: msg}
	}

	sc := &SessionClaims{
		CallerID:    stringClaim(claims, "sub"),
		AdapterName: stringClaim(claims, "adapter"),
		SessionID:   stringClaim(claims, "sid"),
	}
	if sc.CallerID == "" || sc.AdapterName == "" {
		return nil, &domain.AuthenticationError{Message: "malformed session token"}
	}
	return sc, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
