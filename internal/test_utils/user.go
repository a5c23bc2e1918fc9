package test_utils

import (
	"context"
	"fmt"

	"github.com/cashplan/cashplan/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestUser is the user the service and handler tests act as.
func TestUser(id int) user.User {
	return user.User{
		Id:          id,
		Uid:         fmt.Sprintf("test-uid-%d", id),
		Email:       fmt.Sprintf("user%d@example.com", id),
		DisplayName: fmt.Sprintf("Test User %d", id),
		Currency:    user.DefaultCurrency,
		Locale:      user.DefaultLocale,
	}
}

func ContextWithUser(ctx context.Context, id int) context.Context {
	return user.WithUser(ctx, TestUser(id))
}

// InsertUser stores a user row so foreign keys to users hold in repository tests.
func InsertUser(ctx context.Context, db *pgxpool.Pool, email string) (int, error) {
	var id int
	err := db.QueryRow(ctx,
		"INSERT INTO users (uid, email, display_name, currency, locale) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		"uid-"+email, email, email, user.DefaultCurrency, user.DefaultLocale,
	).Scan(&id)
	return id, err
}

// InsertProject stores a project owned by ownerId together with its owner
// collaborator row.
func InsertProject(ctx context.Context, db *pgxpool.Pool, ownerId int, name string) (int, error) {
	var id int
	err := db.QueryRow(ctx,
		"INSERT INTO project (name, currency, start_date, owner_id) VALUES ($1, 'EUR', '2026-01-01', $2) RETURNING id",
		name, ownerId,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	_, err = db.Exec(ctx,
		"INSERT INTO project_collaborator (project_id, user_id, role) VALUES ($1, $2, 'owner')", id, ownerId)
	return id, err
}
