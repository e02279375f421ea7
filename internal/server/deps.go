package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mbd888/chainlens/internal/config"
	"github.com/mbd888/chainlens/internal/goldrush"
	"github.com/mbd888/chainlens/internal/graph"
	"github.com/mbd888/chainlens/internal/journal"
	"github.com/mbd888/chainlens/internal/tools"
)

// Deps are the upstream clients, journal and tool registry shared by the
// HTTP server, the MCP server and the CLI.
type Deps struct {
	Graph     *graph.Service
	Analytics *goldrush.Client
	Journal   journal.Store
	Tools     *tools.Registry

	db *sql.DB // nil when the journal is in memory
}

// DepsOptions overrides parts of the wiring, mostly for tests.
type DepsOptions struct {
	GraphConfig *graph.Config // skips loading cfg.GraphConfigPath
	HTTPClient  *http.Client  // shared by both upstream clients
	Journal     journal.Store // skips DATABASE_URL
}

// NewDeps builds everything a tool invocation needs from cfg.
func NewDeps(cfg *config.Config, logger *slog.Logger, opts DepsOptions) (*Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	graphCfg := opts.GraphConfig
	if graphCfg == nil {
		loaded, err := graph.LoadConfig(cfg.GraphConfigPath)
		if err != nil {
			return nil, err
		}
		graphCfg = &loaded
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.UpstreamTimeout}
	}

	graphSvc, err := graph.NewService(*graphCfg, graph.Options{
		APIKey:     cfg.GraphAPIKey,
		GatewayURL: cfg.GraphGatewayURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	analytics := goldrush.NewClient(goldrush.Config{
		APIURL:     cfg.GoldRushAPIURL,
		APIKey:     cfg.GoldRushAPIKey,
		Timeout:    cfg.UpstreamTimeout,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if cfg.GoldRushAPIKey == "" {
		logger.Warn("GOLDRUSH_API_KEY not set, analytics tools will fail upstream")
	}

	d := &Deps{Graph: graphSvc, Analytics: analytics, Journal: opts.Journal}

	if d.Journal == nil {
		if cfg.DatabaseURL != "" {
			db, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("failed to open database: %w", err)
			}

			// Configure connection pool
			db.SetMaxOpenConns(10)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(5 * time.Minute)

			if err := db.Ping(); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}

			d.db = db
			d.Journal = journal.NewPostgresStore(db)
			logger.Info("using PostgreSQL journal", "url", maskDSN(cfg.DatabaseURL))
		} else {
			d.Journal = journal.NewMemoryStore(journal.DefaultMemoryCapacity)
			logger.Info("using in-memory journal (data will not persist)")
		}
	}

	d.Tools, err = tools.New(logger, d.Journal, d.Graph, d.Analytics)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the database pool, if any.
func (d *Deps) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
