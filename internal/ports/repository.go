package ports

import (
	"context"

	"tradeJournal/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving journal trades.
type TradeRepository interface {
	// Create saves a new trade and returns its assigned ID.
	Create(ctx context.Context, trade *domain.Trade) (int64, error)
	// Update replaces the stored fields of an existing trade.
	// Returns an error wrapping ErrNotFound if the ID does not exist.
	Update(ctx context.Context, trade *domain.Trade) error
	// Delete removes a trade by ID.
	// Returns an error wrapping ErrNotFound if the ID does not exist.
	Delete(ctx context.Context, id int64) error
	// FindByID retrieves a trade by its unique ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id int64) (*domain.Trade, error)
	// FindAll retrieves all trades, ordered by ID.
	FindAll(ctx context.Context) ([]*domain.Trade, error)
}
