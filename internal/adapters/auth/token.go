package auth

import (
	"fmt"
	"time"

	"virtualevents/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const issuerName = "virtualevents"

type jwtClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// JWT signs and verifies HS256 session tokens. The session id travels as the
// token id (jti) and the username as the subject.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a JWT using secret as the signing key.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

// Issue signs a token for the session that expires after expiry.
func (j *JWT) Issue(sessionID, username string, expiry time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Username: username,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and issuer and returns the session claims.
func (j *JWT) Verify(token string) (*domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthenticated)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no session", domain.ErrUnauthenticated)
	}
	return &domain.TokenClaims{SessionID: claims.ID, Username: claims.Subject}, nil
}
