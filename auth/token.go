package auth

import (
	"chat-relay/errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified result of a bearer token: who the caller is,
// plus the display attributes denormalized into broadcast messages.
type Identity struct {
	UserID      string
	DisplayName string
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

// Verifier validates opaque bearer tokens into user identities.
// A bad token is normal input, reported as errors.ErrMissingToken or
// errors.ErrInvalidToken, never a fatal condition. The signing secret
// is injected configuration; tokens are issued by an external service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, errors.ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return Identity{}, errors.ErrInvalidToken
	}

	return Identity{UserID: claims.UserID, DisplayName: claims.DisplayName}, nil
}

// GenerateToken creates a signed JWT for a specific user. The relay
// itself never issues tokens in production; this mirrors the external
// issuer for tests and local bootstrap.
func GenerateToken(secret, userID, displayName string, duration time.Duration) (string, error) {
	expirationTime := time.Now().Add(duration)

	claims := &CustomClaims{
		UserID:      userID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-relay",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
