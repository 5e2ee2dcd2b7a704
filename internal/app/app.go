// Package app wires configuration, storage, and services together.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/services/catalog"
	"github.com/stocksim/stocksim/internal/services/ledger"
	"github.com/stocksim/stocksim/internal/services/mailer"
	"github.com/stocksim/stocksim/internal/services/report"
	"github.com/stocksim/stocksim/internal/services/trading"
	"github.com/stocksim/stocksim/internal/services/txlog"
	"github.com/stocksim/stocksim/internal/services/valuation"
	"github.com/stocksim/stocksim/internal/services/watchlist"
	surrealstore "github.com/stocksim/stocksim/internal/storage/surrealdb"
)

// App holds all initialized services and storage. It is the shared
// core behind cmd/stocksim-server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.StorageManager
	Ledger       interfaces.LedgerService
	Trading      interfaces.TradingService
	Transactions interfaces.TransactionLogService
	Catalog      interfaces.CatalogService
	Portfolio    interfaces.PortfolioService
	Watchlist    interfaces.WatchlistService
	Reports      interfaces.ReportService
	Mailer       interfaces.Mailer
	StartupTime  time.Time
}

func init() {
	// Money fields serialize as JSON numbers, matching what API
	// clients expect from amounts and prices.
	decimal.MarshalJSONWithoutQuotes = true
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, and all services.
// configPath may be empty, in which case the default resolution logic
// is used: STOCKSIM_CONFIG, then stocksim.toml next to the binary,
// then config/stocksim.toml.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	if configPath == "" {
		configPath = os.Getenv("STOCKSIM_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "stocksim.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stocksim.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealstore.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app := NewAppWithStorage(config, logger, storageManager)

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Msg("Application initialized")

	return app, nil
}

// NewAppWithStorage assembles the service graph on top of an existing
// storage manager. Tests use this to run against in-memory or
// container-backed stores.
func NewAppWithStorage(config *common.Config, logger *common.Logger, storageManager interfaces.StorageManager) *App {
	ledgerService := ledger.NewService(storageManager.Holdings(), logger)
	catalogService := catalog.NewService(storageManager.Stocks(), logger)
	tradingService := trading.NewService(ledgerService, storageManager.Transactions(), storageManager.Stocks(), logger)
	txlogService := txlog.NewService(storageManager.Transactions(), storageManager.Stocks(), storageManager.Users(), logger)
	portfolioService := valuation.NewService(storageManager.Holdings(), storageManager.Stocks(), logger)
	watchlistService := watchlist.NewService(storageManager.Watchlist(), storageManager.Stocks(), logger)
	reportService := report.NewService(portfolioService, logger)

	return &App{
		Config:       config,
		Logger:       logger,
		Storage:      storageManager,
		Ledger:       ledgerService,
		Trading:      tradingService,
		Transactions: txlogService,
		Catalog:      catalogService,
		Portfolio:    portfolioService,
		Watchlist:    watchlistService,
		Reports:      reportService,
		Mailer:       mailer.NewLogMailer(logger),
		StartupTime:  time.Now(),
	}
}

// Close releases storage resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
