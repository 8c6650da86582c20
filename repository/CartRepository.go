package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"bouquetStore/entities"
	"bouquetStore/models"

	"github.com/redis/go-redis/v9"
)

type CartRepository interface {
	SetCartItem(ctx context.Context, item entities.CartItem) (err error)
	GetCartItem(ctx context.Context, ownerId, itemId string) (item entities.CartItem, exists bool, err error)
	GetCart(ctx context.Context, ownerId string) (items []entities.CartItem, err error)
	RemoveCartItems(ctx context.Context, ownerId string, itemIds ...string) (err error)
}

// CartRepo keeps one Redis hash per owner, one field per cart item.
type CartRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(ctx context.Context, redisConn *redis.Client, ttl time.Duration) (CartRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &CartRepo{
		rdb: redisConn,
		ttl: ttl,
	}, nil
}

func cartKey(ownerId string) string {
	return "cart:" + ownerId
}

func (c *CartRepo) SetCartItem(ctx context.Context, item entities.CartItem) (err error) {
	jsonData, err := json.Marshal(item)
	if err != nil {
		slog.Error("SetCartItem: marshal", "error", err)
		err = models.ErrServerError
		return
	}
	key := cartKey(item.OwnerId)
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, item.Id, jsonData)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		slog.Error("SetCartItem: redis", "error", err)
		err = models.ErrServerError
	}
	return
}

func (c *CartRepo) GetCartItem(ctx context.Context, ownerId, itemId string) (item entities.CartItem, exists bool, err error) {
	val, e := c.rdb.HGet(ctx, cartKey(ownerId), itemId).Result()
	if e != nil {
		if errors.Is(e, redis.Nil) {
			return
		}
		slog.Error("GetCartItem: redis", "error", e)
		err = models.ErrServerError
		return
	}
	if err = json.Unmarshal([]byte(val), &item); err != nil {
		slog.Error("GetCartItem: unmarshal", "error", err)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (c *CartRepo) GetCart(ctx context.Context, ownerId string) (items []entities.CartItem, err error) {
	vals, e := c.rdb.HGetAll(ctx, cartKey(ownerId)).Result()
	if e != nil {
		slog.Error("GetCart: redis", "error", e)
		err = models.ErrServerError
		return
	}
	items = make([]entities.CartItem, 0, len(vals))
	for _, v := range vals {
		var item entities.CartItem
		if err = json.Unmarshal([]byte(v), &item); err != nil {
			slog.Error("GetCart: unmarshal", "error", err)
			err = models.ErrServerError
			return
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return
}

// RemoveCartItems deletes the given fields in one command. Missing ids are ignored,
// so repeating the call is harmless.
func (c *CartRepo) RemoveCartItems(ctx context.Context, ownerId string, itemIds ...string) (err error) {
	if len(itemIds) == 0 {
		return
	}
	err = c.rdb.HDel(ctx, cartKey(ownerId), itemIds...).Err()
	if err != nil {
		slog.Error("RemoveCartItems: redis", "error", err)
		err = models.ErrServerError
	}
	return
}
