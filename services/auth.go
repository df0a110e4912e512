package services

import (
	"crypto/subtle"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/security"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenType is the token_type reported alongside every access token.
const TokenType = "bearer"

// AuthService exchanges the admin credential for an access token.
type AuthService struct {
	credentials config.AdminCredentials
	issuer      *security.TokenIssuer
	logger      zerolog.Logger
}

func NewAuthService(credentials config.AdminCredentials, issuer *security.TokenIssuer) *AuthService {
	return &AuthService{
		credentials: credentials,
		issuer:      issuer,
		logger:      log.With().Str("service", "auth").Logger(),
	}
}

// Login checks username and password against the configured admin.
//
// Parameters:
//   - username: compared byte for byte with ADMIN_USERNAME
//   - password: verified against ADMIN_PASSWORD_HASH
//
// Returns:
//   - string: a signed access token whose subject is the username
//   - error: errs.ErrInvalidCredentials for a wrong username or password. The
//     two cases are only told apart in the log.
func (s *AuthService) Login(username, password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.credentials.Username)) != 1 {
		s.logger.Warn().Str("reason", "unknown username").Msg("login rejected")
		return "", errs.NewInvalidCredentialsError()
	}

	if !security.VerifyPassword(password, s.credentials.PasswordHash) {
		s.logger.Warn().Str("reason", "password mismatch").Msg("login rejected")
		return "", errs.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Issue(username)
	if err != nil {
		s.logger.Error().Err(err).Msg("issuing access token")
		return "", errs.NewInternalError(err)
	}

	s.logger.Info().Msg("admin logged in")
	return token, nil
}

// VerifyToken returns the subject of a valid access token.
func (s *AuthService) VerifyToken(token string) (string, error) {
	return s.issuer.Verify(token)
}
