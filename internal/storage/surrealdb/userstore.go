package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

func (s *UserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: "user", ID: userID}
		}
		return nil, &models.StorageError{Op: "select user", Err: err}
	}
	if user == nil || user.UserID == "" {
		return nil, &models.NotFoundError{Resource: "user", ID: userID}
	}
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := "SELECT * FROM user WHERE email = $email LIMIT 1"
	vars := map[string]any{"email": strings.ToLower(strings.TrimSpace(email))}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "select user by email", Err: err}
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, &models.NotFoundError{Resource: "user", ID: email}
}

func (s *UserStore) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	sql := "SELECT * FROM user WHERE reset_token_hash = $hash LIMIT 1"
	vars := map[string]any{"hash": tokenHash}

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "select user by reset token", Err: err}
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, &models.NotFoundError{Resource: "user", ID: ""}
}

func (s *UserStore) SaveUser(ctx context.Context, user *models.User) error {
	sql := "UPSERT $rid CONTENT $user"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("user", user.UserID),
		"user": user,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return &models.StorageError{Op: "save user", Err: fmt.Errorf("after retries: %w", lastErr)}
}

func (s *UserStore) DeleteUser(ctx context.Context, userID string) error {
	_, err := surrealdb.Delete[models.User](ctx, s.db, surrealmodels.NewRecordID("user", userID))
	if err != nil && !isNotFoundError(err) {
		return &models.StorageError{Op: "delete user", Err: err}
	}
	return nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	sql := "SELECT * FROM user ORDER BY email ASC"

	results, err := surrealdb.Query[[]models.User](ctx, s.db, sql, nil)
	if err != nil {
		return nil, &models.StorageError{Op: "list users", Err: err}
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.User
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *UserStore) CountByRole(ctx context.Context, role string) (int, error) {
	sql := "SELECT count() AS total FROM user WHERE role = $role GROUP ALL"
	vars := map[string]any{"role": role}

	type countRow struct {
		Total int `json:"total"`
	}

	results, err := surrealdb.Query[[]countRow](ctx, s.db, sql, vars)
	if err != nil {
		return 0, &models.StorageError{Op: "count users by role", Err: err}
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Total, nil
	}
	return 0, nil
}
