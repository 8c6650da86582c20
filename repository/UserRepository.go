package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"bouquetStore/entities"
	"bouquetStore/models"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetUserById(ctx context.Context, id string) (models.User_db, bool, error)
	GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error)
	ListUsersByRoles(ctx context.Context, roles []string) ([]entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	EncryptPassword(userPass string) (hashedPassword string, err error)
	VerifyPassword(hashedPassword string, sentPassword string) bool
	AddNewUser(ctx context.Context, uModel models.User_db) (err error)
}

type UserRepo struct {
	db   *sql.DB
	cost int
}

func NewUserRepository(conn *sql.DB, bcryptCost int) (UserRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserRepo{
		db:   conn,
		cost: bcryptCost,
	}, nil
}

func (u *UserRepo) getUser(ctx context.Context, op, where string, arg any) (uModel models.User_db, exists bool, err error) {
	row := u.db.QueryRowContext(ctx, "SELECT id, name, email, password, role FROM users WHERE "+where+" = $1", arg)
	err = row.Scan(&uModel.Id, &uModel.Name, &uModel.Email, &uModel.Password, &uModel.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		slog.Error(op, "error", err)
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (u *UserRepo) GetUserById(ctx context.Context, id string) (models.User_db, bool, error) {
	return u.getUser(ctx, "GetUserById", "id", id)
}

func (u *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User_db, bool, error) {
	return u.getUser(ctx, "GetUserByEmail", "LOWER(email)", email)
}

func (u *UserRepo) listUsers(ctx context.Context, op, query string, args ...any) (users []entities.User, err error) {
	rows, e := u.db.QueryContext(ctx, query, args...)
	if e != nil {
		slog.Error(op+"[1]", "error", e)
		err = models.ErrServerError
		return
	}
	defer rows.Close()
	users = []entities.User{}
	for rows.Next() {
		var usr entities.User
		if err = rows.Scan(&usr.Id, &usr.Name, &usr.Email, &usr.Role); err != nil {
			slog.Error(op+"[2]", "error", err)
			err = models.ErrServerError
			return
		}
		users = append(users, usr)
	}
	if err = rows.Err(); err != nil {
		slog.Error(op+"[3]", "error", err)
		err = models.ErrServerError
	}
	return
}

func (u *UserRepo) ListUsersByRoles(ctx context.Context, roles []string) ([]entities.User, error) {
	return u.listUsers(ctx, "ListUsersByRoles", "SELECT id, name, email, role FROM users WHERE role = ANY($1)", pq.Array(roles))
}

func (u *UserRepo) ListUsers(ctx context.Context) ([]entities.User, error) {
	return u.listUsers(ctx, "ListUsers", "SELECT id, name, email, role FROM users ORDER BY name")
}

func (u *UserRepo) EncryptPassword(userPass string) (hashedPassword string, err error) {
	var password []byte
	password, err = bcrypt.GenerateFromPassword([]byte(userPass), u.cost)
	if err != nil {
		slog.Error("EncryptPassword", "error", err)
		err = models.ErrServerError
		return
	}
	hashedPassword = string(password)
	return
}

func (u *UserRepo) VerifyPassword(hashedPassword string, sentPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(sentPassword))
	if err != nil {
		slog.Debug("VerifyPassword", "error", err)
	}
	return err == nil
}

func (u *UserRepo) AddNewUser(ctx context.Context, uModel models.User_db) (err error) {
	_, err = u.db.ExecContext(ctx, "INSERT INTO users (id, name, email, password, role) VALUES ($1, $2, LOWER($3), $4, $5)",
		uModel.Id, uModel.Name, uModel.Email, uModel.Password, uModel.Role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			err = models.ErrNotAllowed
			return
		}
		slog.Error("AddNewUser", "error", err)
		err = models.ErrServerError
	}
	return
}
