package redis_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	cobanredis "github.com/phrazzld/coban-api/internal/platform/redis"
	"github.com/phrazzld/coban-api/internal/store"
	"github.com/phrazzld/coban-api/internal/store/storetest"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedisAddrEnv names a disposable Redis server. Tests that need a live
// server are skipped when it is unset.
const testRedisAddrEnv = "COBAN_TEST_REDIS_ADDR"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func connectTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	addr := os.Getenv(testRedisAddrEnv)
	if addr == "" {
		t.Skipf("%s not set", testRedisAddrEnv)
	}
	rdb, err := cobanredis.Connect(context.Background(), cobanredis.Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestScoreStoreContract(t *testing.T) {
	rdb := connectTestRedis(t)
	prefix := "coban-test:" + uuid.NewString() + ":"

	storetest.RunScoreStoreContract(t, func(t *testing.T) store.ScoreStore {
		return cobanredis.NewScoreStore(rdb, prefix, discardLogger())
	})
}

func TestScoreStoreWritesUnderPrefix(t *testing.T) {
	rdb := connectTestRedis(t)
	ctx := context.Background()
	prefix := "coban-test:" + uuid.NewString() + ":"
	s := cobanredis.NewScoreStore(rdb, prefix, discardLogger())

	_, err := s.CreateDefault(ctx, "u1", domain.LevelN5)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Delete(ctx, "u1") })

	raw, err := rdb.Get(ctx, prefix+"u1").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"userId":"u1"`)
}

func unreachableStore(t *testing.T) *cobanredis.ScoreStore {
	t.Helper()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return cobanredis.NewScoreStore(rdb, "", discardLogger())
}

func TestScoreStoreUnreachable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := unreachableStore(t)

	_, err := s.Get(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.False(t, store.IsNotFoundError(err))

	_, err = s.CreateDefault(ctx, "u1", domain.LevelN5)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	assert.ErrorIs(t, s.Delete(ctx, "u1"), store.ErrStorageUnavailable)
	assert.False(t, s.Validate(ctx))
}

func TestScoreStoreRejectsInvalidRecordBeforeNetwork(t *testing.T) {
	t.Parallel()

	s := unreachableStore(t)
	_, err := s.CreateDefault(context.Background(), "", domain.LevelN5)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestKeyUsesDefaultPrefix(t *testing.T) {
	t.Parallel()

	s := unreachableStore(t)
	assert.Equal(t, cobanredis.DefaultKeyPrefix+"u1", s.Key("u1"))
}

func TestConnectRequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := cobanredis.Connect(context.Background(), cobanredis.Options{})
	assert.Error(t, err)
}
