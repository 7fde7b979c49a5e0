package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

const (
	passwordAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	defaultPasswordLength = 8
	minPasswordLength     = 8
	resetCodeDigits       = 6
)

// GeneratePassword returns a random password of length characters drawn
// uniformly from [A-Za-z0-9]. A non-positive length uses the default of 8.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = defaultPasswordLength
	}
	return randomString(passwordAlphabet, length)
}

func generateResetCode() (string, error) {
	return randomString("0123456789", resetCodeDigits)
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.Invalid("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return domain.Invalid("email %q is not valid", email)
	}
	return nil
}
