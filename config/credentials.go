package config

import (
	"strings"

	"github.com/rpupo63/portfolio-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsernameKey     = "ADMIN_USERNAME"
	AdminPasswordHashKey = "ADMIN_PASSWORD_HASH"
	SecretKeyKey         = "SECRET_KEY"
)

// CredentialKeys lists every value LoadAdminCredentials requires.
var CredentialKeys = []string{AdminUsernameKey, AdminPasswordHashKey, SecretKeyKey}

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// AdminCredentials is the single admin identity plus the token signing secret.
// It is built once at startup and passed by value.
type AdminCredentials struct {
	Username      string
	PasswordHash  string
	SigningSecret []byte
}

// LoadAdminCredentials reads and validates the admin credentials. Any missing,
// empty or malformed value is a configuration error and the caller is expected
// to abort startup.
func LoadAdminCredentials(c map[string]string) (AdminCredentials, error) {
	values := make(map[string]string, len(CredentialKeys))
	for _, key := range CredentialKeys {
		value := GetString(c, key, "")
		if strings.TrimSpace(value) == "" {
			return AdminCredentials{}, errs.NewEnvironmentVariableError(key)
		}
		values[key] = value
	}

	hash := values[AdminPasswordHashKey]
	if err := validatePasswordHash(hash); err != nil {
		return AdminCredentials{}, err
	}

	return AdminCredentials{
		Username:      values[AdminUsernameKey],
		PasswordHash:  hash,
		SigningSecret: []byte(values[SecretKeyKey]),
	}, nil
}

// validatePasswordHash rejects anything that is not a plain bcrypt string.
// Quoted or byte-string wrapped values are reported, not repaired.
func validatePasswordHash(hash string) error {
	if hash != strings.TrimSpace(hash) {
		return errs.NewInvalidConfigError(AdminPasswordHashKey, "surrounding whitespace", nil)
	}
	if strings.HasPrefix(hash, `"`) || strings.HasPrefix(hash, `'`) ||
		strings.HasPrefix(hash, `b'`) || strings.HasPrefix(hash, `b"`) {
		return errs.NewInvalidConfigError(AdminPasswordHashKey, "value is wrapped in quotes", nil)
	}

	hasPrefix := false
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return errs.NewInvalidConfigError(AdminPasswordHashKey, "not a bcrypt hash", nil)
	}

	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return errs.NewInvalidConfigError(AdminPasswordHashKey, "malformed bcrypt hash", err)
	}
	return nil
}
