package product

import "context"

type Product struct {
	ID          int64      `json:"id"`
	Nombre      string     `json:"nombre"`
	Precio      float64    `json:"precio"`
	CategoriaID CategoryID `json:"categoriaID"`
	Descripcion string     `json:"descripcion"`
}

// Store owns the ordered product collection. Lookups report absence through
// the bool so callers never have to compare errors for the common miss.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	// Create ignores p.ID and returns the product with its assigned id.
	Create(ctx context.Context, p Product) (Product, error)
	// Replace overwrites every field except the id.
	Replace(ctx context.Context, id int64, p Product) (Product, bool, error)
	// Delete returns the removed product as it was before removal.
	Delete(ctx context.Context, id int64) (Product, bool, error)
	Ping(ctx context.Context) error
}

func SeedProducts() []Product {
	return []Product{
		{ID: 1, Nombre: "Laptop", Precio: 1200, CategoriaID: "10", Descripcion: "Laptop gaming"},
		{ID: 2, Nombre: "Mouse", Precio: 25, CategoriaID: "20", Descripcion: "Mouse inalámbrico"},
	}
}
