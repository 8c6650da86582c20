package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"bouquetStore/config"
	"bouquetStore/entities"
	"bouquetStore/models"
	"bouquetStore/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minPasswordLength = 8

type UserService struct {
	ur       repository.UserRepository
	sr       repository.SessionRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewUserService(uRepo repository.UserRepository, sRepo repository.SessionRepository, auth config.AuthConfig) UserService {
	return UserService{
		ur:       uRepo,
		sr:       sRepo,
		secret:   []byte(auth.JWTSecret),
		tokenTTL: auth.TokenTTL,
	}
}

func (us *UserService) addUser(ctx context.Context, creds models.Credentials) (user entities.User, err error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if _, e := mail.ParseAddress(email); e != nil {
		err = fmt.Errorf("%w: invalid email", models.ErrBadRequest)
		return
	}
	if len(creds.Password) < minPasswordLength {
		err = fmt.Errorf("%w: password must be at least %d characters", models.ErrBadRequest, minPasswordLength)
		return
	}

	_, exists, err := us.ur.GetUserByEmail(ctx, email)
	if err != nil {
		return
	}
	if exists {
		slog.Debug("addUser: user already exists", "email", email)
		err = models.ErrNotAllowed
		return
	}
	hashed, err := us.ur.EncryptPassword(creds.Password)
	if err != nil {
		return
	}
	uModel := models.User_db{
		Id:       uuid.NewString(),
		Name:     strings.TrimSpace(creds.Name),
		Email:    email,
		Password: hashed,
		Role:     creds.Role,
	}
	if err = us.ur.AddNewUser(ctx, uModel); err != nil {
		return
	}
	user = entities.User{Id: uModel.Id, Name: uModel.Name, Email: uModel.Email, Role: uModel.Role}
	return
}

// Signup registers a customer account. The requested role is ignored.
func (us *UserService) Signup(ctx context.Context, creds models.Credentials) (entities.User, error) {
	creds.Role = entities.RoleCustomer
	return us.addUser(ctx, creds)
}

// CreateUser registers an account with any role; it is reached only from admin paths.
func (us *UserService) CreateUser(ctx context.Context, creds models.Credentials) (entities.User, error) {
	if creds.Role == "" {
		creds.Role = entities.RoleStaff
	}
	return us.addUser(ctx, creds)
}

// Signin verifies the password and issues a signed token bound to a new session.
func (us *UserService) Signin(ctx context.Context, email, password string) (token string, user entities.User, err error) {
	uModel, exists, err := us.ur.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return
	}
	if !exists || !us.ur.VerifyPassword(uModel.Password, password) {
		slog.Debug("Signin: bad credentials", "email", email)
		err = models.ErrUnauthorized
		return
	}
	sessionId, err := us.sr.CreateSession(ctx, uModel.Id, uModel.Role, us.tokenTTL)
	if err != nil {
		return
	}

	now := time.Now()
	claims := &models.Claims{
		UserId: uModel.Id,
		Role:   uModel.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionId,
			Subject:   uModel.Id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(us.tokenTTL)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(us.secret)
	if err != nil {
		slog.Error("Signin", "error", err)
		err = models.ErrServerError
		return
	}
	user = entities.User{Id: uModel.Id, Name: uModel.Name, Email: uModel.Email, Role: uModel.Role}
	return
}

// CheckAuth accepts a token only if its signature and expiry are valid and its session
// has not been revoked.
func (us *UserService) CheckAuth(ctx context.Context, token string) (*models.Claims, error) {
	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return us.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		slog.Debug("CheckAuth: rejected token", "error", err)
		return nil, models.ErrUnauthorized
	}
	active, err := us.sr.CheckSession(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, models.ErrUnauthorized
	}
	return claims, nil
}

func (us *UserService) Logout(ctx context.Context, claims *models.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.ErrUnauthorized
	}
	return us.sr.DeleteSession(ctx, claims.ID)
}

func (us *UserService) GetUser(ctx context.Context, userId string) (entities.User, error) {
	uModel, exists, err := us.ur.GetUserById(ctx, userId)
	if err != nil {
		return entities.User{}, err
	}
	if !exists {
		return entities.User{}, models.ErrNotFoundError
	}
	return entities.User{Id: uModel.Id, Name: uModel.Name, Email: uModel.Email, Role: uModel.Role}, nil
}

// IsStaff reports whether role is one of staffRoles.
func IsStaff(role string, staffRoles []string) bool {
	for _, r := range staffRoles {
		if r == role {
			return true
		}
	}
	return false
}
