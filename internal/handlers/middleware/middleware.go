package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/config"
	"server/internal/database"
	"server/internal/logger"
	"server/internal/repositories"
)

const sessionTTL = 24 * time.Hour

var sessionKeyPattern = "session:%s"

type Middleware interface {
	RequireAuth() fiber.Handler
	IssueSession(ctx context.Context, userID string) (string, error)
	RevokeSession(ctx context.Context, token string) error
}

type middleware struct {
	db       database.DB
	config   config.Config
	accounts repositories.AccountRepository
	log      logger.Logger
}

func New(db database.DB, config config.Config, accounts repositories.AccountRepository) Middleware {
	return &middleware{
		db:       db,
		config:   config,
		accounts: accounts,
		log:      logger.New("middleware"),
	}
}

// session is the cached server-side half of a bearer token. Only the
// bcrypt hash of the client secret is stored.
type session struct {
	UserID     string    `json:"userId"`
	SecretHash string    `json:"secretHash"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// IssueSession creates a session and returns the opaque bearer token
// the client presents on subsequent requests.
func (m *middleware) IssueSession(ctx context.Context, userID string) (string, error) {
	log := m.log.Function("IssueSession")

	sessionID := uuid.NewString()
	secret := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", log.Err("failed to hash session secret", err)
	}

	if err := m.sessionItem(sessionID, session{
		UserID:     userID,
		SecretHash: string(hash),
		ExpiresAt:  time.Now().Add(sessionTTL),
	}).SetValue(ctx); err != nil {
		return "", log.Err("failed to store session", err, "userID", userID)
	}

	return sessionID + ":" + secret, nil
}

func (m *middleware) sessionItem(sessionID string, value session) database.CacheItem[session] {
	ttl := sessionTTL
	return database.CacheItem[session]{
		Cache:       m.db.Cache.Session,
		Key:         sessionID,
		Value:       value,
		Expiry:      &ttl,
		HashPattern: &sessionKeyPattern,
	}
}

func (m *middleware) RevokeSession(ctx context.Context, token string) error {
	sessionID, _, ok := splitToken(token)
	if !ok {
		return m.log.Function("RevokeSession").ErrMsg("malformed session token")
	}

	return m.sessionItem(sessionID, session{}).DeleteCachedValue(ctx)
}

// RequireAuth validates the bearer token and stores the caller's user
// id in request locals.
func (m *middleware) RequireAuth() fiber.Handler {
	log := m.log.Function("RequireAuth")

	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return unauthorized(c)
		}

		sessionID, secret, ok := splitToken(token)
		if !ok {
			return unauthorized(c)
		}

		entry, found, err := m.sessionItem(sessionID, session{}).GetValue(c.Context())
		if err != nil {
			log.Er("failed to read session from cache", err)
			return unauthorized(c)
		}
		if !found || time.Now().After(entry.ExpiresAt) {
			return unauthorized(c)
		}

		if bcrypt.CompareHashAndPassword([]byte(entry.SecretHash), []byte(secret)) != nil {
			return unauthorized(c)
		}

		c.Locals("userID", entry.UserID)
		c.Locals("authToken", token)

		if user, userErr := m.accounts.GetUser(c.Context(), entry.UserID); userErr == nil {
			c.Locals("user", *user)
		}

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func splitToken(token string) (sessionID, secret string, ok bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"message": "unauthorized"})
}
