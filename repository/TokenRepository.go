package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"bouquetStore/entities"
	"bouquetStore/models"

	"github.com/lib/pq"
)

// TokenRepository stores one device token set per user. Add is a set union and Remove a
// set difference, so concurrent writers converge regardless of order.
type TokenRepository interface {
	GetTokens(ctx context.Context, userIds []string) (sets []entities.DeviceTokenSet, err error)
	AddTokens(ctx context.Context, userId string, tokens []string) (err error)
	RemoveTokens(ctx context.Context, userIds []string, tokens []string) (err error)
}

type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepository(conn *sql.DB) (TokenRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &TokenRepo{
		db: conn,
	}, nil
}

func (t *TokenRepo) GetTokens(ctx context.Context, userIds []string) (sets []entities.DeviceTokenSet, err error) {
	sets = []entities.DeviceTokenSet{}
	if len(userIds) == 0 {
		return
	}
	rows, e := t.db.QueryContext(ctx, "SELECT user_id, tokens FROM device_tokens WHERE user_id = ANY($1)", pq.Array(userIds))
	if e != nil {
		slog.Error("GetTokens[1]", "error", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	for rows.Next() {
		var set entities.DeviceTokenSet
		var tokens pq.StringArray
		if err = rows.Scan(&set.UserId, &tokens); err != nil {
			slog.Error("GetTokens[2]", "error", err)
			err = models.ErrServerError
			return
		}
		set.Tokens = tokens
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		slog.Error("GetTokens[3]", "error", err)
		err = models.ErrServerError
	}
	return
}

func (t *TokenRepo) AddTokens(ctx context.Context, userId string, tokens []string) (err error) {
	if len(tokens) == 0 {
		return
	}
	_, err = t.db.ExecContext(ctx, `INSERT INTO device_tokens (user_id, tokens)
		VALUES ($1, ARRAY(SELECT DISTINCT unnest($2::text[])))
		ON CONFLICT (user_id) DO UPDATE
		SET tokens = ARRAY(SELECT DISTINCT unnest(device_tokens.tokens || EXCLUDED.tokens))`,
		userId, pq.Array(tokens))
	if err != nil {
		slog.Error("AddTokens", "error", err)
		err = models.ErrServerError
	}
	return
}

func (t *TokenRepo) RemoveTokens(ctx context.Context, userIds []string, tokens []string) (err error) {
	if len(userIds) == 0 || len(tokens) == 0 {
		return
	}
	_, err = t.db.ExecContext(ctx, `UPDATE device_tokens
		SET tokens = ARRAY(SELECT tok FROM unnest(tokens) AS tok WHERE tok <> ALL($2::text[]))
		WHERE user_id = ANY($1)`,
		pq.Array(userIds), pq.Array(tokens))
	if err != nil {
		slog.Error("RemoveTokens", "error", err)
		err = models.ErrServerError
	}
	return
}
