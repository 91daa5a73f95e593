package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

type Redis struct{ rdb *redis.Client }

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

// Open connects to REDIS_URL and checks the server answers.
func Open(ctx context.Context, redisURL string) (*Redis, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for resume store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (s *Redis) keyGame(gameID string) string { return "sb:resume:" + strings.TrimSpace(gameID) }
func (s *Redis) keyCode(code string) string   { return "sb:code:" + strings.ToUpper(strings.TrimSpace(code)) }

func (s *Redis) Save(ctx context.Context, rec Record) error {
	if err := normalize(&rec); err != nil {
		return err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyGame(rec.GameID), raw, TTL)
	if rec.Code != "" {
		pipe.Set(ctx, s.keyCode(rec.Code), rec.GameID, TTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Redis) Load(ctx context.Context, gameID string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.keyGame(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode resume record: %w", err)
	}
	return &rec, nil
}

func (s *Redis) LoadByCode(ctx context.Context, code string) (*Record, error) {
	gameID, err := s.rdb.Get(ctx, s.keyCode(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, gameID)
}

func (s *Redis) Delete(ctx context.Context, gameID string) error {
	rec, err := s.Load(ctx, gameID)
	if err != nil {
		return err
	}
	keys := []string{s.keyGame(gameID)}
	if rec != nil && rec.Code != "" {
		keys = append(keys, s.keyCode(rec.Code))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *Redis) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
