package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printflow/printflow/internal/domain/model"
)

// ProductRepository provides read access to the catalog for order pricing.
type ProductRepository interface {
	Create(ctx context.Context, name string, basePrice decimal.Decimal) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
}
