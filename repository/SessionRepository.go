package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bouquetStore/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepository backs access tokens: a token is only honoured while its session key
// exists, which is what makes logout effective before the token expires.
type SessionRepository interface {
	CreateSession(ctx context.Context, userId string, role string, ttl time.Duration) (sessionId string, err error)
	CheckSession(ctx context.Context, sessionId string) (bool, error)
	DeleteSession(ctx context.Context, sessionId string) (err error)
}

type SessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepository(ctx context.Context, redisConn *redis.Client) (SessionRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &SessionRepo{
		rdb: redisConn,
	}, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (s *SessionRepo) CreateSession(ctx context.Context, userId string, role string, ttl time.Duration) (sessionId string, err error) {
	sessionId = uuid.NewString()
	key := sessionKey(sessionId)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "userId", userId, "role", role)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		slog.Error("CreateSession", "error", err)
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) DeleteSession(ctx context.Context, sessionId string) (err error) {
	err = s.rdb.Del(ctx, sessionKey(sessionId)).Err()
	if err != nil {
		slog.Error("DeleteSession", "error", err)
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) CheckSession(ctx context.Context, sessionId string) (bool, error) {
	exists, err := s.rdb.Exists(ctx, sessionKey(sessionId)).Result()
	if err != nil {
		slog.Error("CheckSession", "error", err)
		return false, models.ErrServerError
	}
	return exists > 0, nil
}
