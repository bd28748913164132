package order

import "context"

type Repository interface {
	// RecordOnce inserts the receipt unless its session ID was recorded
	// before. Returns false (and no error) on the duplicate path.
	RecordOnce(ctx context.Context, r *Receipt) (bool, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Receipt, error)
	List(ctx context.Context) ([]*Receipt, error)
}
