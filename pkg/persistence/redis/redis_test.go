package redis

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/dukex/operion-assistant/pkg/persistence/persistencetest"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistence(t *testing.T, opts ...Option) *Persistence {
	t.Helper()

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping redis persistence tests")
	}

	opts = append([]Option{WithKeyPrefix("test:" + t.Name() + ":")}, opts...)

	p, err := NewPersistence(t.Context(), slog.Default(), redisURL, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = p.Close(t.Context())
	})

	return p
}

func TestRedisKey(t *testing.T) {
	p := NewPersistenceWithClient(slog.Default(), redis.NewClient(&redis.Options{Addr: "localhost:0"}))

	assert.Equal(t, DefaultKeyPrefix+"agent:session", p.redisKey(models.SessionKey{AgentID: "agent", SessionID: "session"}))
	assert.NotEqual(t,
		p.redisKey(models.SessionKey{AgentID: "a:b", SessionID: "c"}),
		p.redisKey(models.SessionKey{AgentID: "a", SessionID: "b:c"}),
	)

	custom := NewPersistenceWithClient(slog.Default(), redis.NewClient(&redis.Options{Addr: "localhost:0"}), WithKeyPrefix("x:"), WithTTL(time.Hour))
	assert.Equal(t, "x::session", custom.redisKey(models.SessionKey{SessionID: "session"}))
	assert.Equal(t, time.Hour, custom.ttl)
}

func TestNewPersistence_InvalidURL(t *testing.T) {
	_, err := NewPersistence(t.Context(), slog.Default(), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestPersistence_Suite(t *testing.T) {
	p := newTestPersistence(t)

	persistencetest.RunSuite(t.Context(), t, p)
}

func TestPersistence_TTL(t *testing.T) {
	p := newTestPersistence(t, WithTTL(time.Minute))

	key := models.SessionKey{AgentID: "agent", SessionID: "ttl"}
	require.NoError(t, p.SaveContext(t.Context(), models.NewSessionContext(key)))

	ttl, err := p.client.TTL(t.Context(), p.redisKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
