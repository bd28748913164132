package product

import "context"

type Repository interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	// GetActiveByIDs returns only products that still exist and are active;
	// unknown IDs are omitted, never an error.
	GetActiveByIDs(ctx context.Context, ids []string) ([]*Product, error)
}
