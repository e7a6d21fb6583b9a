// Package redis provides Redis persistence for session contexts, stored as JSON values
// with an optional expiry so idle sessions age out.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces session keys.
	DefaultKeyPrefix = "operion:assistant:session:"

	pingTimeout = 5 * time.Second
)

// Option customizes a Persistence.
type Option func(*Persistence)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(p *Persistence) {
		p.prefix = prefix
	}
}

// WithTTL sets the expiry refreshed on every save. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(p *Persistence) {
		p.ttl = ttl
	}
}

// Persistence implements the persistence.Persistence interface on top of Redis.
type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
	prefix string
	ttl    time.Duration
}

// NewPersistence connects to the Redis server at redisURL (redis://[:password@]host:port/db).
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string, opts ...Option) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewPersistenceWithClient(logger, client, opts...), nil
}

// NewPersistenceWithClient wraps an existing client.
func NewPersistenceWithClient(logger *slog.Logger, client redis.UniversalClient, opts ...Option) *Persistence {
	p := &Persistence{
		client: client,
		logger: logger,
		prefix: DefaultKeyPrefix,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Persistence) GetContext(ctx context.Context, key models.SessionKey) (*models.SessionContext, error) {
	data, err := p.client.Get(ctx, p.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewSessionError("GetContext", key.String(), persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to get session: %w", err))
	}

	var session models.SessionContext

	err = json.Unmarshal(data, &session)
	if err != nil {
		return nil, persistence.NewSessionError("GetContext", key.String(), fmt.Errorf("failed to unmarshal session: %w", err))
	}

	return &session, nil
}

func (p *Persistence) SaveContext(ctx context.Context, session *models.SessionContext) error {
	if session == nil || session.Key.SessionID == "" {
		return persistence.NewSessionError("SaveContext", "", persistence.ErrInvalidSession)
	}

	session.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(session)
	if err != nil {
		return persistence.NewSessionError("SaveContext", session.Key.String(), fmt.Errorf("failed to marshal session: %w", err))
	}

	err = p.client.Set(ctx, p.redisKey(session.Key), data, p.ttl).Err()
	if err != nil {
		return persistence.NewSessionError("SaveContext", session.Key.String(), fmt.Errorf("failed to set session: %w", err))
	}

	return nil
}

func (p *Persistence) DeleteContext(ctx context.Context, key models.SessionKey) error {
	err := p.client.Del(ctx, p.redisKey(key)).Err()
	if err != nil {
		return persistence.NewSessionError("DeleteContext", key.String(), fmt.Errorf("failed to delete session: %w", err))
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		p.logger.Error("Failed to close redis client", "error", err)

		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

// redisKey joins the prefix with the key parts; ":" inside ids is escaped so keys never collide.
func (p *Persistence) redisKey(key models.SessionKey) string {
	escape := strings.NewReplacer(`\`, `\\`, ":", `\:`)

	return p.prefix + escape.Replace(key.AgentID) + ":" + escape.Replace(key.SessionID)
}
