package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"vrs/src/config"
	"vrs/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateSequence formats a reference number such as RENT-000042. The seed is
// the row id, so numbers never collide within a table.
func GenerateSequence(prefix string, width int, seed uint) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, seed)
}

// ParseSequence is the inverse of GenerateSequence.
func ParseSequence(prefix string, ref string) (uint, error) {
	head := prefix + "-"
	if !strings.HasPrefix(ref, head) {
		return 0, fmt.Errorf("reference %q does not start with %s", ref, head)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(ref, head), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

func NewSessionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckSecret(hash string, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

func GenerateJWT(id uint, name string, email string, role types.Role) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		Name:  name,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			Issuer:    config.API_HOST,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.GetJWTTTL())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.GetJWTSecret())
}

// ParseDate parses a YYYY-MM-DD value at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(config.DATE_PARSE_FORMAT, s, time.UTC)
}

// ParseDateRange parses optional from/to bounds. The upper bound is inclusive of the
// whole day, so it is returned as the following midnight.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if from != "" {
		if start, err = ParseDate(from); err != nil {
			return start, end, types.NewValidationError("invalid from date: %s", from)
		}
	}
	if to != "" {
		if end, err = ParseDate(to); err != nil {
			return start, end, types.NewValidationError("invalid to date: %s", to)
		}
		end = end.AddDate(0, 0, 1)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return start, end, types.NewValidationError("date range is empty")
	}
	return start, end, nil
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// WithSuffix appends the environment name to a queue or topic name outside production.
func WithSuffix(name string) string {
	env := os.Getenv("API_ENV")
	if env == "" || IsProd() {
		return name
	}
	return fmt.Sprintf("%s_%s", name, env)
}
