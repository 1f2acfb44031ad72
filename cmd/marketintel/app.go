package main

import (
	"fmt"

	"github.com/sawpanic/marketintel/internal/collaborators"
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/infrastructure/db"
	"github.com/sawpanic/marketintel/internal/persistence/cache"
	"github.com/sawpanic/marketintel/internal/research"
	"github.com/sawpanic/marketintel/internal/state"
)

// app bundles the per-process wiring every subcommand needs: warehouse
// and cache managers (possibly disabled), the shared rolling-state
// engine, the research engine, and the outbound collaborators. This
// mirrors the teacher's cmd/cryptorun wiring of one application
// context shared across its scan/pairs/monitor subcommands.
type app struct {
	cfg      config.Config
	db       *db.Manager
	cache    cache.Manager
	stateEng *state.Engine
	research *research.Engine
	market   collaborators.MarketClient
	explorer collaborators.BlockExplorerClient
}

// newApp wires a full app from cfg. The warehouse connection is only
// opened when cfg.WarehouseDSN is set; otherwise every repository read
// degrades to empty per §7 StorageUnavailable.
func newApp(cfg config.Config) (*app, func(), error) {
	dbCfg := db.DefaultConfig()
	dbCfg.DSN = cfg.WarehouseDSN
	dbCfg.Enabled = cfg.WarehouseDSN != ""
	dbMgr, err := db.NewManager(dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening warehouse: %w", err)
	}

	var cacheMgr cache.Manager
	if cfg.CacheAddr != "" {
		cacheMgr = cache.NewRedisManager(cfg.CacheAddr, 0)
	} else {
		cacheMgr = cache.NoopManager{}
	}

	stateEng := state.NewEngine(cfg.State)
	eng := research.NewEngine(cfg.Research, stateEng, newEventSource(dbMgr.Repository()))

	a := &app{
		cfg:      cfg,
		db:       dbMgr,
		cache:    cacheMgr,
		stateEng: stateEng,
		research: eng,
		market:   collaborators.NewHTTPMarketClient(cfg.MarketHost, cfg.Collaborator),
		explorer: collaborators.NewHTTPBlockExplorerClient(cfg.BlockExplorerHost, cfg.Collaborator),
	}

	cleanup := func() {
		if err := dbMgr.Close(); err != nil {
			logWarnClose("warehouse", err)
		}
		if err := cacheMgr.Close(); err != nil {
			logWarnClose("cache", err)
		}
	}
	return a, cleanup, nil
}
