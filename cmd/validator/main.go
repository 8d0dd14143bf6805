// Command validator runs the settlement ledger's validation loop: on each
// tick it loads every justified transaction file ready for validation,
// verifies its proofs, and folds the resulting encrypted balance deltas
// into the ledger (spec §4.6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shieldledger/settlement/config"
	"github.com/shieldledger/settlement/db"
	"github.com/shieldledger/settlement/db/inmemory"
	"github.com/shieldledger/settlement/db/pebbledb"
	"github.com/shieldledger/settlement/log"
	"github.com/shieldledger/settlement/storage"
	"github.com/shieldledger/settlement/validator"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting validator", "datadir", cfg.Datadir, "dbBackend", cfg.DBBackend)

	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("failed to open ledger database: %v", err)
	}
	defer backend.Close()

	ledger := storage.New(backend)
	orchestrator := validator.New(ledger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	runLoop(ctx, orchestrator, cfg)
	log.Info("validator stopped")
}

// runLoop runs one validation pass every cfg.ValidateEvery, until ctx is
// cancelled. A pass failure is logged but never stops the loop: per §7,
// the only fatal conditions are internal to a single pass (an unreadable
// object store), and the next tick simply retries.
func runLoop(ctx context.Context, orchestrator *validator.Orchestrator, cfg *config.Config) {
	ticker := time.NewTicker(cfg.ValidateEvery)
	defer ticker.Stop()

	runPass(ctx, orchestrator)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runPass(ctx, orchestrator)
		}
	}
}

func runPass(ctx context.Context, orchestrator *validator.Orchestrator) {
	if err := orchestrator.ValidateAllPending(ctx); err != nil {
		log.Errorw(err, "validation pass failed")
	}
}

func openBackend(cfg *config.Config) (db.Database, error) {
	switch cfg.DBBackend {
	case db.TypeInMemory:
		return inmemory.New(db.Options{Path: cfg.Datadir})
	default:
		return pebbledb.New(db.Options{Path: cfg.Datadir})
	}
}
