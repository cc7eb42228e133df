package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/Houeta/staff-directory/internal/cache"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	defer filet.CleanUp(t)

	ctx := context.Background()
	dir := filepath.Join(filet.TmpDir(t, ""), "nested")
	store := cache.NewFileStore(dir)

	_, err := store.Load(ctx, "user")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Save(ctx, "user", record(t, `{"empid":"E-1","current_skills":["Go"]}`)))

	got, err := store.Load(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "E-1", got.ID())
	assert.JSONEq(t, `["Go"]`, string(got[models.KeySkills]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, store.Delete(ctx, "user"))
	require.NoError(t, store.Delete(ctx, "user"))

	_, err = store.Load(ctx, "user")
	require.ErrorIs(t, err, cache.ErrNotFound)
}

func TestFileStore_CorruptFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	filet.File(t, filepath.Join(dir, "user.json"), "{not json")

	_, err := cache.NewFileStore(dir).Load(context.Background(), "user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrNotFound)
}

func TestFileStore_PingNotADirectory(t *testing.T) {
	defer filet.CleanUp(t)

	file := filet.TmpFile(t, "", "x")

	err := cache.NewFileStore(file.Name()).Ping(context.Background())
	require.Error(t, err)
}

type fakeRedis struct {
	values  map[string]string
	ttl     time.Duration
	failErr error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	value, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	data, _ := value.([]byte)
	f.values[key] = string(data)
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.failErr)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeRedis{values: map[string]string{}}
	store := cache.NewRedisStore(client, "staffdir:session:", time.Hour)

	_, err := store.Load(ctx, "user")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Save(ctx, "user", record(t, `{"empid":"E-1"}`)))
	assert.Contains(t, client.values, "staffdir:session:user")
	assert.Equal(t, time.Hour, client.ttl)

	got, err := store.Load(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "E-1", got.ID())

	require.NoError(t, store.Delete(ctx, "user"))
	assert.Empty(t, client.values)
	require.NoError(t, store.Ping(ctx))
}

func TestRedisStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := cache.NewRedisStore(&fakeRedis{values: map[string]string{}, failErr: assert.AnError}, "", 0)

	_, err := store.Load(ctx, "user")
	require.ErrorIs(t, err, assert.AnError)
	require.ErrorIs(t, store.Save(ctx, "user", models.Record{}), assert.AnError)
	require.ErrorIs(t, store.Ping(ctx), assert.AnError)
}
