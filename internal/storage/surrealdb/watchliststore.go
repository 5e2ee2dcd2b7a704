package surrealdb

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type watchlistRecord struct {
	UserID  string    `json:"user_id"`
	StockID string    `json:"stock_id"`
	AddedAt time.Time `json:"added_at"`
}

type WatchlistStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewWatchlistStore(db *surrealdb.DB, logger *common.Logger) *WatchlistStore {
	return &WatchlistStore{
		db:     db,
		logger: logger,
	}
}

func watchlistRecordID(userID, stockID string) string {
	return userID + "_" + stockID
}

func (s *WatchlistStore) Add(ctx context.Context, userID, stockID string) error {
	record := watchlistRecord{
		UserID:  userID,
		StockID: stockID,
		AddedAt: time.Now().UTC(),
	}

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID("watchlist", watchlistRecordID(userID, stockID)),
		"record": record,
	}

	if _, err := surrealdb.Query[[]watchlistRecord](ctx, s.db, sql, vars); err != nil {
		return &models.StorageError{Op: "add watchlist entry", Err: err}
	}
	return nil
}

func (s *WatchlistStore) Remove(ctx context.Context, userID, stockID string) error {
	rid := surrealmodels.NewRecordID("watchlist", watchlistRecordID(userID, stockID))
	if _, err := surrealdb.Delete[watchlistRecord](ctx, s.db, rid); err != nil && !isNotFoundError(err) {
		return &models.StorageError{Op: "remove watchlist entry", Err: err}
	}
	return nil
}

func (s *WatchlistStore) Contains(ctx context.Context, userID, stockID string) (bool, error) {
	rid := surrealmodels.NewRecordID("watchlist", watchlistRecordID(userID, stockID))
	record, err := surrealdb.Select[watchlistRecord](ctx, s.db, rid)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, &models.StorageError{Op: "select watchlist entry", Err: err}
	}
	return record != nil && record.UserID != "", nil
}

// ListForUser returns the raw entries ordered by when they were added.
// Stock display fields are joined in by the watchlist service.
func (s *WatchlistStore) ListForUser(ctx context.Context, userID string) ([]*models.WatchlistEntry, error) {
	sql := "SELECT * FROM watchlist WHERE user_id = $user_id ORDER BY added_at ASC"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]watchlistRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, &models.StorageError{Op: "list watchlist", Err: err}
	}

	var entries []*models.WatchlistEntry
	if results != nil && len(*results) > 0 {
		for _, record := range (*results)[0].Result {
			entries = append(entries, &models.WatchlistEntry{
				UserID:  record.UserID,
				StockID: record.StockID,
				AddedAt: record.AddedAt,
			})
		}
	}
	return entries, nil
}
