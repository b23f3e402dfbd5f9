package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"busline/pkg/cache"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type seatView struct {
	TripID string       `json:"trip_id"`
	Seats  map[int]bool `json:"seats"`
}

func TestSetAndGetRoundTrip(t *testing.T) {
	client, mockRedis := redismock.NewClientMock()
	service := cache.NewService(client)

	ctx := context.Background()
	value := seatView{TripID: "t1", Seats: map[int]bool{1: true, 2: false}}

	data, err := json.Marshal(value)
	assert.NoError(t, err)

	mockRedis.ExpectSet("seatmap:t1", data, 30*time.Second).SetVal("OK")
	assert.NoError(t, service.Set(ctx, "seatmap:t1", value, 30*time.Second))

	mockRedis.ExpectGet("seatmap:t1").SetVal(string(data))

	var got seatView
	assert.NoError(t, service.Get(ctx, "seatmap:t1", &got))
	assert.Equal(t, value, got)

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestGet_MissingKeyReturnsCacheMiss(t *testing.T) {
	client, mockRedis := redismock.NewClientMock()
	service := cache.NewService(client)

	mockRedis.ExpectGet("seatmap:absent").RedisNil()

	var got seatView
	err := service.Get(context.Background(), "seatmap:absent", &got)

	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	client, mockRedis := redismock.NewClientMock()
	service := cache.NewService(client)

	mockRedis.ExpectDel("seatmap:t1").SetVal(1)

	assert.NoError(t, service.Delete(context.Background(), "seatmap:t1"))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestSeatMapKey(t *testing.T) {
	assert.Equal(t, "seatmap:abc", cache.SeatMapKey("abc"))
}
