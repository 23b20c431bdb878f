package items

import "context"

// Raw is an undecoded item body.
type Raw struct {
	ID   string
	Body []byte
}

// Repository stores item bodies keyed by id.
type Repository interface {
	// Put inserts or replaces the body of id.
	Put(ctx context.Context, id string, body []byte) error

	// Get returns the body of id, or common.ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns every stored body ordered by id.
	List(ctx context.Context) ([]Raw, error)
}
