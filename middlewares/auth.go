package middlewares

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"shul-backend/models"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
	tokenIssuer  = "shul-backend"
)

// Claims carries the user (subject), the shul schema the user belongs to and
// the user's role in that shul.
type Claims struct {
	Schema string `json:"schema"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	authMu    sync.RWMutex
	jwtSecret []byte
	jwtTTL    = 24 * time.Hour
)

var errNoSecret = errors.New("JWT secret not configured (set JWT_SECRET_KEY or JWT_SECRET)")

// ConfigureAuth sets the signing secret and token lifetime. Called once at startup.
func ConfigureAuth(secret string, ttl time.Duration) {
	authMu.Lock()
	defer authMu.Unlock()
	jwtSecret = []byte(strings.TrimSpace(secret))
	if ttl > 0 {
		jwtTTL = ttl
	}
}

func signingKey() ([]byte, time.Duration, error) {
	authMu.RLock()
	defer authMu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, 0, errNoSecret
	}
	return jwtSecret, jwtTTL, nil
}

func unauthorized(msg string) error {
	return fiber.NewError(fiber.StatusUnauthorized, msg)
}

// parseToken checks signature, expiry, issuer and the shul claims.
func parseToken(raw string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if !claims.VerifyIssuer(tokenIssuer, true) {
		return nil, errors.New("token from another issuer")
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.Schema) == "" {
		return nil, errors.New("token missing subject/schema")
	}
	if !models.ValidRole(claims.Role) {
		return nil, errors.New("token carries an unknown role")
	}
	return &claims, nil
}

// IsAuthenticatedHeader validates the Bearer token and populates
// c.Locals("userID","schema","role").
func IsAuthenticatedHeader() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret, _, err := signingKey()
		if err != nil {
			requestLog(c).Error().Err(err).Msg("auth not configured")
			return fiber.NewError(fiber.StatusInternalServerError, "server auth not configured")
		}

		h := c.Get(authHeader)
		if len(h) < len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			return unauthorized("missing/invalid Authorization header")
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return unauthorized("invalid bearer token")
		}
		claims, err := parseToken(raw, secret)
		if err != nil {
			return unauthorized(err.Error())
		}

		c.Locals("userID", claims.Subject)
		c.Locals("schema", claims.Schema)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// RequireRole rejects requests whose token role is not one of roles.
// Run after IsAuthenticatedHeader.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if !slices.Contains(roles, role) {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// GenerateJWT signs a token for userID acting in schema with role.
func GenerateJWT(userID, schema, role string) (string, error) {
	secret, ttl, err := signingKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		Schema: schema,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
