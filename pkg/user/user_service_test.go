package user

import (
	"context"
	"testing"

	"github.com/cashplan/cashplan/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*ServiceImpl, *StubUserRepository) {
	repo := NewStubUserRepository()
	return NewUserService(repo), repo
}

func TestServiceImpl_EnsureUser(t *testing.T) {
	t.Run("should provision a user on first sight", func(t *testing.T) {
		// given
		service, _ := setupService(t)

		// when
		created, err := service.EnsureUser(context.Background(), "uid-1", " Anna@Example.com ")

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, "anna@example.com", created.Email)
		assert.Equal(t, "anna", created.DisplayName)
		assert.Equal(t, DefaultCurrency, created.Currency)
	})

	t.Run("should return the existing user", func(t *testing.T) {
		// given
		service, _ := setupService(t)
		first, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")
		require.NoError(t, err)

		// when
		second, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")

		// then
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("should follow an email change from the token", func(t *testing.T) {
		// given
		service, _ := setupService(t)
		first, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")
		require.NoError(t, err)

		// when
		second, err := service.EnsureUser(context.Background(), "uid-1", " Anna.Nowak@Example.com ")
		require.NoError(t, err)
		stored, err := service.GetUserByUid(context.Background(), "uid-1")
		require.NoError(t, err)

		// then
		assert.Equal(t, first.Id, second.Id)
		assert.Equal(t, "anna.nowak@example.com", second.Email)
		assert.Equal(t, "anna.nowak@example.com", stored.Email)
		assert.Equal(t, first.DisplayName, stored.DisplayName)
	})

	t.Run("should keep the stored email when the token has none", func(t *testing.T) {
		// given
		service, _ := setupService(t)
		_, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")
		require.NoError(t, err)

		// when
		second, err := service.EnsureUser(context.Background(), "uid-1", "  ")

		// then
		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", second.Email)
	})

	t.Run("should require a uid", func(t *testing.T) {
		service, _ := setupService(t)

		_, err := service.EnsureUser(context.Background(), "", "anna@example.com")

		var validationErr *rest.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestServiceImpl_UpdateCurrentUser(t *testing.T) {
	t.Run("should update settings of the current user", func(t *testing.T) {
		// given
		service, _ := setupService(t)
		u, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")
		require.NoError(t, err)
		ctx := WithUser(context.Background(), u)

		// when
		updated, err := service.UpdateCurrentUser(ctx, User{DisplayName: " Anna ", Currency: "pln"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "Anna", updated.DisplayName)
		assert.Equal(t, "PLN", updated.Currency)
		assert.Equal(t, DefaultLocale, updated.Locale)
		assert.Equal(t, "anna@example.com", updated.Email)
	})

	t.Run("should reject an empty display name", func(t *testing.T) {
		// given
		service, _ := setupService(t)
		u, err := service.EnsureUser(context.Background(), "uid-1", "anna@example.com")
		require.NoError(t, err)

		// when
		_, err = service.UpdateCurrentUser(WithUser(context.Background(), u), User{DisplayName: "  "})

		// then
		var validationErr *rest.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "displayName", validationErr.Field)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		service, _ := setupService(t)

		_, err := service.UpdateCurrentUser(context.Background(), User{DisplayName: "x"})

		assert.ErrorIs(t, err, ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}
