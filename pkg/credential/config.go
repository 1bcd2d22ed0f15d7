package credential

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// Default lifetimes and policy values.
const (
	DefaultMinPasswordLength    = 8
	DefaultBcryptCost           = 10
	DefaultVerificationTokenTTL = 24 * time.Hour
	DefaultPasswordResetTTL     = time.Hour
	DefaultAccessTokenTTL       = time.Hour
	DefaultRefreshTokenTTL      = 30 * 24 * time.Hour
)

// Config is the environment-driven configuration of the Manager.
// TTL values use the ParseTTL format; unparsable values fall back to the defaults.
type Config struct {
	BaseURL                  string `env:"AUTH_BASE_URL" envDefault:"http://localhost:8080"`
	SigningKey               string `env:"AUTH_JWT_SECRET,required"`
	Issuer                   string `env:"AUTH_JWT_ISSUER" envDefault:"accesskit"`
	MinPasswordLength        int    `env:"AUTH_MIN_PASSWORD_LENGTH" envDefault:"8"`
	BcryptCost               int    `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	RequireEmailVerification bool   `env:"AUTH_REQUIRE_EMAIL_VERIFICATION" envDefault:"false"`
	VerificationTokenTTL     string `env:"AUTH_VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	PasswordResetTokenTTL    string `env:"AUTH_PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`
	AccessTokenTTL           string `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL          string `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"30d"`
}

var ttlPattern = regexp.MustCompile(`^(\d+)(ms|s|m|h|d)$`)

// ParseTTL parses an integer followed by one of ms, s, m, h or d.
// Anything else, including a zero or overflowing value, yields fallback.
func ParseTTL(s string, fallback time.Duration) time.Duration {
	m := ttlPattern.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}

	var unit time.Duration
	switch m[2] {
	case "ms":
		unit = time.Millisecond
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	if n > math.MaxInt64/int64(unit) {
		return fallback
	}
	return time.Duration(n) * unit
}
