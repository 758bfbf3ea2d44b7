// Package auth implements the credential gate: one shared password in, one
// signed time-limited bearer token out. There are no users or roles; the
// only credential scope is "the owner".
package auth

import (
	"crypto/subtle"
	"time"

	"gallerykeeper/internal/server/config"
	"gallerykeeper/internal/shared"
)

type Service struct {
	password              []byte
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		password:              []byte(cfg.Password),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

func (s *Service) checkPassword(candidate string) bool {
	return subtle.ConstantTimeCompare(s.password, []byte(candidate)) == 1
}

// IssueToken exchanges the shared password for a signed token. The token
// expires tokenValidityDuration from now and is the only server-side state:
// there is no revocation list.
func (s *Service) IssueToken(password string) (string, error) {
	if !s.checkPassword(password) {
		return "", shared.ErrorInvalidCredentials
	}

	token, err := GenerateToken(s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", err
	}

	return token, nil
}

// VerifyToken reports whether the presented token is valid. All failure
// causes collapse into shared.ErrorInvalidToken.
func (s *Service) VerifyToken(token string) error {
	return ParseToken(token, s.jwtSecret)
}
