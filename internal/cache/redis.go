package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/domain"
)

// RedisCache holds short-lived seat holds and the catalog cache. A seat hold
// is a SetNX lock taken before the transactional claim so two requests for
// the same physical seat fail fast instead of racing to the database.
type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) AcquireSeatHold(ctx context.Context, vueloID int64, numeroAsiento string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(vueloID, numeroAsiento), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, vueloID int64, numeroAsiento string) error {
	return c.client.Del(ctx, seatHoldKey(vueloID, numeroAsiento)).Err()
}

func (c *RedisCache) GetCities(ctx context.Context) ([]domain.City, error) {
	data, err := c.client.Get(ctx, citiesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cities []domain.City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (c *RedisCache) SetCities(ctx context.Context, cities []domain.City) error {
	payload, err := json.Marshal(cities)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, citiesKey(), payload, c.catalogTTL).Err()
}

func (c *RedisCache) GetAirlines(ctx context.Context) ([]domain.Airline, error) {
	data, err := c.client.Get(ctx, airlinesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var airlines []domain.Airline
	if err := json.Unmarshal(data, &airlines); err != nil {
		return nil, err
	}
	return airlines, nil
}

func (c *RedisCache) SetAirlines(ctx context.Context, airlines []domain.Airline) error {
	payload, err := json.Marshal(airlines)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, airlinesKey(), payload, c.catalogTTL).Err()
}

func citiesKey() string {
	return "cache:ciudades"
}

func airlinesKey() string {
	return "cache:aerolineas"
}

func seatHoldKey(vueloID int64, numeroAsiento string) string {
	return fmt.Sprintf("hold:vuelo:%d:asiento:%s", vueloID, numeroAsiento)
}
