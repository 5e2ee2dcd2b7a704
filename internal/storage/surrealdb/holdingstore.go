package surrealdb

import (
	"context"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

// HoldingStore persists one record per open (user, stock) position
// under the compound id <userID>_<stockID>. Writes are guarded by the
// row's version field so concurrent read-modify-write cycles cannot
// silently overwrite each other.
type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewHoldingStore(db *surrealdb.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{
		db:     db,
		logger: logger,
	}
}

func holdingRecordID(userID, stockID string) string {
	return userID + "_" + stockID
}

func (s *HoldingStore) Get(ctx context.Context, userID, stockID string) (*models.Holding, error) {
	rid := surrealmodels.NewRecordID("holding", holdingRecordID(userID, stockID))
	holding, err := surrealdb.Select[models.Holding](ctx, s.db, rid)
	if err != nil {
		if isNotFoundError(err) {
			return nil, &models.NotFoundError{Resource: "holding", ID: stockID}
		}
		return nil, &models.StorageError{Op: "select holding", Err: err}
	}
	if holding == nil || holding.UserID == "" {
		return nil, &models.NotFoundError{Resource: "holding", ID: stockID}
	}
	return holding, nil
}

// Create inserts a new position at version 1. It fails with
// ErrVersionConflict when a row already exists for the pair, which
// happens when two first buys race; the caller re-reads and retries.
func (s *HoldingStore) Create(ctx context.Context, holding *models.Holding) error {
	holding.Version = 1

	sql := "CREATE $rid CONTENT $holding"
	vars := map[string]any{
		"rid":     surrealmodels.NewRecordID("holding", holdingRecordID(holding.UserID, holding.StockID)),
		"holding": holding,
	}

	if _, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return models.ErrVersionConflict
		}
		return &models.StorageError{Op: "create holding", Err: err}
	}
	return nil
}

// Update overwrites the position only if the stored row still carries
// expectedVersion. The written row gets expectedVersion+1.
func (s *HoldingStore) Update(ctx context.Context, holding *models.Holding, expectedVersion int) error {
	holding.Version = expectedVersion + 1

	sql := "UPDATE $rid CONTENT $holding WHERE version = $expected RETURN AFTER"
	vars := map[string]any{
		"rid":      surrealmodels.NewRecordID("holding", holdingRecordID(holding.UserID, holding.StockID)),
		"holding":  holding,
		"expected": expectedVersion,
	}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return &models.StorageError{Op: "update holding", Err: err}
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return models.ErrVersionConflict
	}
	return nil
}

// Delete removes the position only if the stored row still carries
// expectedVersion.
func (s *HoldingStore) Delete(ctx context.Context, userID, stockID string, expectedVersion int) error {
	sql := "DELETE $rid WHERE version = $expected RETURN BEFORE"
	vars := map[string]any{
		"rid":      surrealmodels.NewRecordID("holding", holdingRecordID(userID, stockID)),
		"expected": expectedVersion,
	}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return &models.StorageError{Op: "delete holding", Err: err}
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return models.ErrVersionConflict
	}
	return nil
}

func (s *HoldingStore) ListForUser(ctx context.Context, userID string) ([]*models.Holding, error) {
	sql := "SELECT * FROM holding WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.Holding](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "list holdings", Err: err}
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Holding
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}
