package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/catalog"
	"github.com/ShayCichocki/embassy/internal/concierge"
	"github.com/ShayCichocki/embassy/internal/config"
	"github.com/ShayCichocki/embassy/internal/logging"
	"github.com/ShayCichocki/embassy/internal/navigator"
	"github.com/ShayCichocki/embassy/internal/orchestrator"
	"github.com/ShayCichocki/embassy/internal/state"
)

// appOptions select the optional parts of the wiring.
type appOptions struct {
	// logToFile sends logs to a file so a full-screen UI stays clean.
	logToFile bool
	// events attaches an event emitter; its consumer must drain Events()
	// until the app is closed.
	events bool
}

// app is the wired set of embassy components.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	store   state.Store
	catalog *catalog.Catalog
	watcher *catalog.Watcher
	emitter *orchestrator.EventEmitter

	nav       *navigator.Navigator
	archivist *archivist.Archivist
	orch      *orchestrator.Orchestrator
	concierge *concierge.Concierge
}

// openApp loads configuration and wires every component.
func openApp(opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDriver != "" {
		if err := config.Set(cfg, "storage.driver", flagDriver); err != nil {
			return nil, err
		}
	}
	if flagUser != "" {
		cfg.User.ID = flagUser
	}
	if flagName != "" {
		cfg.User.Name = flagName
	}

	logOpts := logging.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level, File: cfg.Log.File}
	if opts.logToFile && logOpts.File == "" {
		logOpts.File = filepath.Join(cfg.Storage.Path, "embassy.log")
	}
	log, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	for _, w := range cfg.Validate() {
		log.Warn("config", "warning", w)
	}

	a := &app{cfg: cfg, log: log}
	if err := a.wire(opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(opts appOptions) error {
	cfg := a.cfg

	store, err := state.OpenStore(cfg.Storage.Driver, cfg.Storage.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = store

	if cfg.Catalog.Path == "" {
		a.catalog = catalog.Mock()
	} else {
		a.catalog, err = catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		if cfg.Catalog.Watch {
			a.watcher, err = catalog.Watch(a.catalog, cfg.Catalog.Path, a.log)
			if err != nil {
				return err
			}
		}
	}
	a.log.Debug("catalog loaded", "source", a.catalog.Source(), "resources", a.catalog.Len())

	a.nav = navigator.New(store, a.catalog,
		navigator.WithMaxResults(cfg.Navigator.MaxResults),
		navigator.WithBOMTopN(cfg.Navigator.BOMTopN),
		navigator.WithLogger(a.log),
	)
	a.archivist = archivist.New(store,
		archivist.WithMaxHistory(cfg.Session.MaxHistory),
		archivist.WithLogger(a.log),
	)

	orchOpts := []orchestrator.Option{orchestrator.WithLogger(a.log)}
	if opts.events {
		a.emitter = orchestrator.NewEventEmitter(128, a.log)
		orchOpts = append(orchOpts, orchestrator.WithEmitter(a.emitter))
	}
	a.orch = orchestrator.New(store, a.nav, a.archivist, orchOpts...)
	a.concierge = concierge.New(store, a.orch, a.archivist, concierge.WithLogger(a.log))
	return nil
}

// Close releases the emitter, the watcher, the store and the logger.
func (a *app) Close() {
	a.emitter.Close()
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.log.Warn("closing catalog watcher failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing store: %v\n", err)
		}
	}
	a.log.Sync()
}
