package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cashplan/cashplan/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	UpdateCurrentUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// EnsureUser returns the user with uid, creating it on first sight.
	EnsureUser(ctx context.Context, uid string, email string) (User, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetUser(ctx, userId)
}

func (s *ServiceImpl) UpdateCurrentUser(ctx context.Context, user User) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.DisplayName == "" {
		return User{}, rest.Invalid("displayName", "Display name is required")
	}
	user.Currency = strings.ToUpper(strings.TrimSpace(user.Currency))
	if user.Currency == "" {
		user.Currency = current.Currency
	}
	if len(user.Currency) != 3 {
		return User{}, rest.Invalid("currency", "Currency must be a 3-letter ISO code")
	}
	if user.Locale == "" {
		user.Locale = current.Locale
	}
	user.Id = current.Id
	user.Uid = current.Uid
	user.Email = current.Email
	return s.repo.UpdateUser(ctx, user)
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}

func (s *ServiceImpl) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *ServiceImpl) EnsureUser(ctx context.Context, uid string, email string) (User, error) {
	if uid == "" {
		return User{}, rest.Invalid("uid", "User identifier is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.repo.GetUserByUid(ctx, uid)
	if err == nil {
		// The identity provider owns the address; an empty claim keeps the stored one.
		if email == "" || email == existing.Email {
			return existing, nil
		}
		existing.Email = email
		return s.repo.UpdateUser(ctx, existing)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	displayName := email
	if at := strings.Index(email, "@"); at > 0 {
		displayName = email[:at]
	}
	if displayName == "" {
		displayName = uid
	}
	created := User{
		Uid:         uid,
		Email:       email,
		DisplayName: displayName,
		Currency:    DefaultCurrency,
		Locale:      DefaultLocale,
	}
	id, err := s.repo.CreateUser(ctx, created)
	if err != nil {
		return User{}, err
	}
	created.Id = id
	log.Infof("provisioned user %d for uid %s", id, uid)
	return created, nil
}
