package product

// DefaultCatalog returns the catalog a fresh store starts with. Callers
// receive a new slice on every call and may mutate it freely.
func DefaultCatalog() []Product {
	return []Product{
		{ID: "p1", Name: "Wireless Mouse", Price: 499, Stock: 10, Desc: "Comfortable ergonomic mouse"},
		{ID: "p2", Name: "Mechanical Keyboard", Price: 2499, Stock: 5, Desc: "Tactile keys, RGB"},
		{ID: "p3", Name: "USB-C Cable 1m", Price: 199, Stock: 20, Desc: "Fast charge & data"},
		{ID: "p4", Name: "Bluetooth Earbuds", Price: 1499, Stock: 8, Desc: "Noise isolation, 24h battery"},
	}
}
