// Package statefile persists the storefront state as JSON record files in
// a single directory. There are three independent records (products,
// orders, and cart), each durably overwritten as a whole on every save.
// A missing record file yields the record's default value, so a fresh
// state directory works without any setup.
package statefile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/ecomsim/shopfront/internal/domain/cart"
	"github.com/ecomsim/shopfront/internal/domain/order"
	"github.com/ecomsim/shopfront/internal/domain/product"
)

const (
	productsFile = "products.json"
	ordersFile   = "orders.json"
	cartFile     = "cart.json"
)

// Store reads and writes the three state records of a single storefront
// instance. It assumes a single process; concurrent writers are not
// coordinated.
type Store struct {
	dir string
}

// Open ensures the state directory exists and returns a Store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory path.
func (s *Store) Dir() string {
	return s.dir
}

// LoadProducts returns the persisted catalog, or the default seed catalog
// on first run.
func (s *Store) LoadProducts() ([]product.Product, error) {
	var products []product.Product
	ok, err := s.load(productsFile, &products)
	if err != nil {
		return nil, err
	}
	if !ok {
		return product.DefaultCatalog(), nil
	}
	return products, nil
}

// SaveProducts durably overwrites the products record.
func (s *Store) SaveProducts(products []product.Product) error {
	return s.save(productsFile, products)
}

// HasProducts reports whether a products record has been written yet.
func (s *Store) HasProducts() bool {
	_, err := os.Stat(filepath.Join(s.dir, productsFile))
	return err == nil
}

// LoadOrders returns the persisted orders keyed by order id, or an empty
// map on first run.
func (s *Store) LoadOrders() (map[string]*order.Order, error) {
	orders := make(map[string]*order.Order)
	if _, err := s.load(ordersFile, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrders durably overwrites the orders record.
func (s *Store) SaveOrders(orders map[string]*order.Order) error {
	return s.save(ordersFile, orders)
}

// LoadCart returns the persisted cart, or an empty cart on first run.
func (s *Store) LoadCart() (cart.Cart, error) {
	c := make(cart.Cart)
	if _, err := s.load(cartFile, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveCart durably overwrites the cart record.
func (s *Store) SaveCart(c cart.Cart) error {
	return s.save(cartFile, c)
}

func (s *Store) load(name string, v any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", name)
	}
	return true, nil
}

// save writes the record to a temp file in the same directory and renames
// it into place, so a crash mid-write never leaves a truncated record.
func (s *Store) save(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", name)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "close %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replace %s", name)
	}
	return nil
}
