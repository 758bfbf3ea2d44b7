package auth

import (
	"time"

	"gallerykeeper/internal/shared"

	"github.com/golang-jwt/jwt/v5"
)

// Claims embeds the registered claims plus the single application claim:
// the bearer proved knowledge of the shared gallery password.
type Claims struct {
	jwt.RegisteredClaims
	Authenticated bool `json:"authenticated"`
}

func GenerateToken(secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Authenticated: true,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString. Every
// rejection cause (malformed, bad signature, expired, missing claim) comes
// back as shared.ErrorInvalidToken so the caller cannot tell which check
// failed.
func ParseToken(tokenString string, secretKey []byte) error {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return shared.ErrorInvalidToken
	}

	if !token.Valid || !claims.Authenticated {
		return shared.ErrorInvalidToken
	}

	return nil
}
