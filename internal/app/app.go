package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecomsim/shopfront/internal/journal"
	"github.com/ecomsim/shopfront/internal/shop"
	"github.com/ecomsim/shopfront/internal/sim"
	"github.com/ecomsim/shopfront/internal/storage/statefile"
)

// Run creates all dependencies, resumes unfinished shipment simulations,
// and blocks until shutdown. It is the single wiring point for the
// application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("state_dir", cfg.StateDir))

	store, err := statefile.Open(cfg.StateDir)
	if err != nil {
		return errors.Wrap(err, "open state store")
	}

	jrnl, err := journal.Open(filepath.Join(cfg.StateDir, "journal.jsonl"))
	if err != nil {
		return errors.Wrap(err, "open journal")
	}
	defer jrnl.Close()

	sh, err := shop.New(
		shop.Config{Carrier: cfg.Carrier},
		store,
		jrnl,
		lg.Named("shop"),
		m.MeterProvider().Meter("shopfront"),
		m.TracerProvider().Tracer("shopfront"),
	)
	if err != nil {
		return errors.Wrap(err, "init shop")
	}

	simulator := sim.New(sim.Config{
		PaymentDelay:  cfg.Payment.Delay,
		InitialDelay:  cfg.Shipping.InitialDelay,
		InitialJitter: cfg.Shipping.InitialJitter,
		StageDelay:    cfg.Shipping.StageDelay,
		StageJitter:   cfg.Shipping.StageJitter,
		ResumeDelay:   cfg.Shipping.ResumeDelay,
		ResumeJitter:  cfg.Shipping.ResumeJitter,
	}, sh, lg.Named("sim"))
	sh.AttachPayments(simulator)

	resumed := simulator.Resume()
	lg.Info("Storefront ready",
		zap.Int("products", len(sh.Products())),
		zap.Int("orders", len(sh.Orders())),
		zap.Int("resumed_shipments", resumed))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return simulator.Run(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				lg.Debug("simulation status", zap.Int("active", simulator.Active()))
			}
		}
	})
	return g.Wait()
}
