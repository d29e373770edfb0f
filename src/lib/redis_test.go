package lib

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type cachedPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func TestCacheJSON(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	NewRedisClient(rdb)
	defer NewRedisClient(nil)

	ctx := context.Background()
	mock.ExpectSet("session:abc:latest", `{"lat":14.5,"lon":121}`, time.Minute).SetVal("OK")
	assert.NoError(t, CacheSetJSON(ctx, "session:abc:latest", cachedPoint{Lat: 14.5, Lon: 121}, time.Minute))

	mock.ExpectGet("session:abc:latest").SetVal(`{"lat":14.5,"lon":121}`)
	var p cachedPoint
	assert.True(t, CacheGetJSON(ctx, "session:abc:latest", &p))
	assert.Equal(t, 14.5, p.Lat)

	mock.ExpectGet("session:missing:latest").RedisNil()
	assert.False(t, CacheGetJSON(ctx, "session:missing:latest", &p))

	mock.ExpectDel("session:abc:latest").SetVal(1)
	CacheDelete(ctx, "session:abc:latest")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheWithoutClient(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	NewRedisClient(nil)
	var p cachedPoint
	assert.NoError(t, CacheSetJSON(context.Background(), "k", p, time.Minute))
	assert.False(t, CacheGetJSON(context.Background(), "k", &p))
}
