// Command seed-catalog initializes a state directory with the default
// product catalog.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/go-faster/errors"

	"github.com/ecomsim/shopfront/internal/domain/product"
	"github.com/ecomsim/shopfront/internal/storage/statefile"
)

func main() {
	var (
		stateDir string
		force    bool
	)
	flag.StringVar(&stateDir, "state-dir", "data", "directory holding the persisted state records")
	flag.BoolVar(&force, "force", false, "overwrite an existing products record")
	flag.Parse()

	if err := run(stateDir, force); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(stateDir string, force bool) error {
	store, err := statefile.Open(stateDir)
	if err != nil {
		return errors.Wrap(err, "open state store")
	}
	if store.HasProducts() && !force {
		return errors.New("products record already exists (use -force to overwrite)")
	}

	catalog := product.DefaultCatalog()
	if err := store.SaveProducts(catalog); err != nil {
		return errors.Wrap(err, "save products")
	}
	slog.Info("catalog seeded",
		slog.String("state_dir", stateDir),
		slog.Int("products", len(catalog)))
	return nil
}
