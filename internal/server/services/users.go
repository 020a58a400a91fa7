// Package services contains server-side business logic. This file implements
// UserService, which owns the user directory: account creation, credential
// checks and token issuance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/auth"
	"github.com/dmitrijs2005/recipeapi/internal/server/config"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/repomanager"
)

const msgPasswordTooLong = "ensure this field has no more than 72 bytes"

// UserFields carries the optional attributes accepted at account creation.
type UserFields struct {
	Name string
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      *auth.PasswordHasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      auth.NewPasswordHasher(cfg.BcryptCost),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// NormalizeEmail lower-cases the domain part and keeps the local part as is.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// CreateUser hashes password and stores a new active account.
func (s *UserService) CreateUser(ctx context.Context, email, password string, extra UserFields) (*models.User, error) {
	if email == "" {
		return nil, common.ErrorEmailRequired
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    NormalizeEmail(email),
		Name:     extra.Name,
		Password: hash,
		IsActive: true,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// CreateSuperuser creates an account and grants it staff and superuser flags.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.CreateUser(ctx, email, password, UserFields{})
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true

	if err := s.repomanager.Users(s.db).Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

// Authenticate returns the active user matching the credentials. Unknown
// email, inactive account and wrong password all yield ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(password)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		s.hasher.CompareDummy(password)
		return nil, common.ErrorUnauthorized
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		if errors.Is(err, auth.ErrMismatchedHashAndPassword) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("stored password hash of user %d is unusable: %w", user.ID, err)
	}

	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", common.NewValidationError("password", msgPasswordTooLong)
		}
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

// ObtainToken authenticates the pair and issues an access token.
func (s *UserService) ObtainToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// UserIDFromToken validates an access token and returns its owner.
func (s *UserService) UserIDFromToken(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// UpdateUser changes the name and, when given, the password of an account.
func (s *UserService) UpdateUser(ctx context.Context, id int64, name, password *string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		user.Name = *name
	}
	if password != nil {
		hash, err := s.hashPassword(*password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}
