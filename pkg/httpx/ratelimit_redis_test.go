package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/todopilot/pilot/pkg/httpx"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container in -short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisLimiter(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	client, err := httpx.NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Hour, Burst: 2}
	limiters := httpx.RedisLimiters(client)

	t.Run("shared counter across instances", func(t *testing.T) {
		a := httpx.RateLimit(limiters("login", cfg), cfg, httpx.IPKeyExtractor)(okHandler())
		b := httpx.RateLimit(limiters("login", cfg), cfg, httpx.IPKeyExtractor)(okHandler())

		require.Equal(t, http.StatusOK, fire(a, "10.1.0.1").Code)
		require.Equal(t, http.StatusOK, fire(b, "10.1.0.1").Code)
		rec := fire(a, "10.1.0.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("groups do not share counters", func(t *testing.T) {
		writes := httpx.RateLimit(limiters("writes", cfg), cfg, httpx.IPKeyExtractor)(okHandler())
		require.Equal(t, http.StatusOK, fire(writes, "10.1.0.1").Code)
	})
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := httpx.NewRedisClient(context.Background(), "not a url")
	require.Error(t, err)
}
